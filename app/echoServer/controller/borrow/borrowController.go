package borrow

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/chandan0609/LMS-3/model"
	"github.com/chandan0609/LMS-3/policy"
	borrowsvc "github.com/chandan0609/LMS-3/service/borrow"
)

type Controller struct {
	Svc borrowsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func actor(c echo.Context) (int64, model.Role) {
	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(string)
	return uid, model.Role(role)
}

// POST /v1/borrow-records
func (h *Controller) Create(c echo.Context) error {
	uid, role := actor(c)
	if policy.Decide(role, policy.BorrowCreate) == policy.Deny {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	var req model.CreateBorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	rec, err := h.Svc.Borrow(c.Request().Context(), uid, req.BookID)
	if err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrBookUnavailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "This book is not available for borrowing"})
		case borrowsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			h.Log.Error("borrow create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, rec)
}

// GET /v1/borrow-records
func (h *Controller) List(c echo.Context) error {
	uid, role := actor(c)
	rows, err := h.Svc.List(c.Request().Context(), uid, role)
	if err != nil {
		if borrowsvc.Code(err) == borrowsvc.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		h.Log.Error("borrow list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/borrow-records/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, role := actor(c)

	row, err := h.Svc.Get(c.Request().Context(), uid, role, id)
	if err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case borrowsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		default:
			h.Log.Error("borrow detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, row)
}

// POST /v1/borrow-records/:id/return_book
func (h *Controller) ReturnBook(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, role := actor(c)

	if err := h.Svc.Return(c.Request().Context(), uid, role, id); err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrAlreadyReturned:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Book already returned"})
		case borrowsvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case borrowsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		default:
			h.Log.Error("borrow return", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Book returned successfully"})
}

// GET /v1/borrow-records/check_due_books (admin)
func (h *Controller) CheckDueBooks(c echo.Context) error {
	_, role := actor(c)
	if policy.Decide(role, policy.BorrowCheckDue) != policy.Allow {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	count, err := h.Svc.CheckDueBooks(c.Request().Context())
	if err != nil {
		h.Log.Error("check due books", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Sent %d notifications for overdue books", count),
	})
}
