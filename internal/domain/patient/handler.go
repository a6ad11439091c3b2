package patient

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/munaimtahir/lims-googel/internal/platform/apperr"
	"github.com/munaimtahir/lims-googel/internal/platform/auth"
	"github.com/munaimtahir/lims-googel/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.List)
	api.GET("/patients/:id", h.Get)

	write := api.Group("", auth.RequireRole(auth.RoleReceptionist))
	write.POST("/patients", h.Register)
	write.PUT("/patients/:id", h.Update)
}

// Register creates a patient, or updates one when the body carries an id.
func (h *Handler) Register(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return apperr.ToHTTPError(apperr.Validation("body", "malformed request body: %v", err))
	}
	saved, err := h.svc.Register(c.Request().Context(), &p)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *Handler) Update(c echo.Context) error {
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.ToHTTPError(apperr.Validation("body", "malformed request body: %v", err))
	}
	saved, err := h.svc.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
