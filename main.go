// Package main library management API.
//
// @title           Library Management API
// @version         1.0
// @description     Library backend: users, books, categories, borrow records.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/chandan0609/LMS-3/app/echoServer"
	authctrl "github.com/chandan0609/LMS-3/app/echoServer/controller/auth"
	bookctrl "github.com/chandan0609/LMS-3/app/echoServer/controller/book"
	borrowctrl "github.com/chandan0609/LMS-3/app/echoServer/controller/borrow"
	categoryctrl "github.com/chandan0609/LMS-3/app/echoServer/controller/category"
	userctrl "github.com/chandan0609/LMS-3/app/echoServer/controller/user"
	"github.com/chandan0609/LMS-3/app/echoServer/validation"
	"github.com/chandan0609/LMS-3/config"
	bookrepo "github.com/chandan0609/LMS-3/repository/book"
	borrowrepo "github.com/chandan0609/LMS-3/repository/borrow"
	categoryrepo "github.com/chandan0609/LMS-3/repository/category"
	"github.com/chandan0609/LMS-3/repository/notifier"
	userrepo "github.com/chandan0609/LMS-3/repository/user"
	authsvc "github.com/chandan0609/LMS-3/service/auth"
	booksvc "github.com/chandan0609/LMS-3/service/book"
	borrowsvc "github.com/chandan0609/LMS-3/service/borrow"
	categorysvc "github.com/chandan0609/LMS-3/service/category"
	usersvc "github.com/chandan0609/LMS-3/service/user"
	"github.com/chandan0609/LMS-3/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	cr := categoryrepo.New(db)
	lr := borrowrepo.New(db)
	nr := notifier.NewHTTP(cfg.NotifierURL, cfg.NotifierAPIKey)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	us := usersvc.New(ur)
	bs := booksvc.New(br)
	cs := categorysvc.New(cr)
	ls := borrowsvc.New(lr, nr, cfg.LoanPeriodDays, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	categoryC := &categoryctrl.Controller{Svc: cs, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: ls, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		User:     userC,
		Book:     bookC,
		Category: categoryC,
		Borrow:   borrowC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
