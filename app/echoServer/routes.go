package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/chandan0609/LMS-3/app/echoServer/controller/auth"
	bookctrl "github.com/chandan0609/LMS-3/app/echoServer/controller/book"
	borrowctrl "github.com/chandan0609/LMS-3/app/echoServer/controller/borrow"
	categoryctrl "github.com/chandan0609/LMS-3/app/echoServer/controller/category"
	userctrl "github.com/chandan0609/LMS-3/app/echoServer/controller/user"
	"github.com/chandan0609/LMS-3/app/echoServer/jwtx"
)

type C struct {
	Auth      *authctrl.Controller
	User      *userctrl.Controller
	Book      *bookctrl.Controller
	Category  *categoryctrl.Controller
	Borrow    *borrowctrl.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public: registration and login only
	pub := e.Group("/v1")
	pub.POST("/users", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// lift user_id + role out of the verified token
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			role, err := jwtx.RoleFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			ctx.Set("role", role)
			return next(ctx)
		}
	})

	// Users
	auth.GET("/users", c.User.List)
	auth.GET("/users/me", c.User.Me)
	auth.GET("/users/:id", c.User.Get)
	auth.PATCH("/users/:id", c.User.Update)

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/:id", c.Book.Detail)
	auth.POST("/books", c.Book.Create)
	auth.PATCH("/books/:id", c.Book.Update)
	auth.DELETE("/books/:id", c.Book.Delete)

	// Categories
	auth.GET("/categories", c.Category.List)
	auth.GET("/categories/:id", c.Category.Detail)
	auth.POST("/categories", c.Category.Create)
	auth.PATCH("/categories/:id", c.Category.Update)
	auth.DELETE("/categories/:id", c.Category.Delete)

	// Borrow ledger; check_due_books registered before :id on purpose
	auth.GET("/borrow-records/check_due_books", c.Borrow.CheckDueBooks)
	auth.GET("/borrow-records", c.Borrow.List)
	auth.POST("/borrow-records", c.Borrow.Create)
	auth.GET("/borrow-records/:id", c.Borrow.Detail)
	auth.POST("/borrow-records/:id/return_book", c.Borrow.ReturnBook)
}
