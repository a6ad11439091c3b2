package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/munaimtahir/lims-googel/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the read-only catalog endpoints. Reference data is
// seeded at startup, so no write endpoints exist.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/sample-types", h.ListSampleTypes)
	api.GET("/sample-types/:id", h.GetSampleType)
	api.GET("/tests", h.ListTests)
	api.GET("/tests/:id", h.GetTest)
	api.GET("/tests/:id/parameters", h.GetTestParameters)
}

func (h *Handler) ListSampleTypes(c echo.Context) error {
	items, err := h.svc.ListSampleTypes(c.Request().Context())
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetSampleType(c echo.Context) error {
	st, err := h.svc.GetSampleType(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) ListTests(c echo.Context) error {
	items, err := h.svc.ListTests(c.Request().Context())
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetTest(c echo.Context) error {
	t, err := h.svc.GetTest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) GetTestParameters(c echo.Context) error {
	params, err := h.svc.GetTestParameters(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, params)
}
