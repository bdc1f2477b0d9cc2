package category

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/chandan0609/LMS-3/model"
	"github.com/chandan0609/LMS-3/policy"
	categorysvc "github.com/chandan0609/LMS-3/service/category"
)

type Controller struct {
	Svc categorysvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func role(c echo.Context) model.Role {
	r, _ := c.Get("role").(string)
	return model.Role(r)
}

// POST /v1/categories (admin/librarian)
func (h *Controller) Create(c echo.Context) error {
	if policy.Decide(role(c), policy.CategoryWrite) != policy.Allow {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req model.CategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	cat, err := h.Svc.Create(c.Request().Context(), req.Name)
	if err != nil {
		switch categorysvc.Code(err) {
		case categorysvc.ErrNameTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "category already exists"})
		case categorysvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("category create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, cat)
}

// GET /v1/categories (any authenticated role)
func (h *Controller) List(c echo.Context) error {
	if policy.Decide(role(c), policy.CategoryRead) != policy.Allow {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("category list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/categories/:id
func (h *Controller) Detail(c echo.Context) error {
	if policy.Decide(role(c), policy.CategoryRead) != policy.Allow {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	cat, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if categorysvc.Code(err) == categorysvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		h.Log.Error("category detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, cat)
}

// PATCH /v1/categories/:id (admin/librarian)
func (h *Controller) Update(c echo.Context) error {
	if policy.Decide(role(c), policy.CategoryWrite) != policy.Allow {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.CategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	cat, err := h.Svc.Update(c.Request().Context(), id, req.Name)
	if err != nil {
		switch categorysvc.Code(err) {
		case categorysvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		case categorysvc.ErrNameTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "category already exists"})
		case categorysvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("category update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, cat)
}

// DELETE /v1/categories/:id (admin/librarian)
func (h *Controller) Delete(c echo.Context) error {
	if policy.Decide(role(c), policy.CategoryWrite) != policy.Allow {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		switch categorysvc.Code(err) {
		case categorysvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		case categorysvc.ErrInUse:
			return c.JSON(http.StatusConflict, echo.Map{"message": "category still referenced by books"})
		default:
			h.Log.Error("category delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
