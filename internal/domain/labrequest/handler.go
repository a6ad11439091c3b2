package labrequest

import (
	"net/http"

	"github.com/google/uuid"
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
	api.GET("/requests", h.List)
	api.GET("/requests/:id", h.Get)

	reception := api.Group("", auth.RequireRole(auth.RoleReceptionist))
	reception.POST("/requests", h.Create)

	phlebotomy := api.Group("", auth.RequireRole(auth.RolePhlebotomist))
	phlebotomy.POST("/requests/:id/collect", h.Collect)

	bench := api.Group("", auth.RequireRole(auth.RoleLabTech, auth.RolePathologist))
	bench.POST("/requests/:id/update-results", h.UpdateResults)
	bench.POST("/requests/:id/update-all-results", h.UpdateAllResults)
	bench.POST("/requests/:id/update-comment", h.UpdateComment)

	pathology := api.Group("", auth.RequireRole(auth.RolePathologist))
	pathology.POST("/requests/:id/verify", h.Verify)
	pathology.POST("/requests/:id/interpret", h.Interpret)
}

func (h *Handler) requestID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.ToHTTPError(apperr.Validation("id", "invalid request id: %s", c.Param("id")))
	}
	return id, nil
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.ToHTTPError(apperr.Validation("body", "malformed request body: %v", err))
	}
	req, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := h.requestID(c)
	if err != nil {
		return err
	}
	req, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	if patientID := c.QueryParam("patient"); patientID != "" {
		items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
		if err != nil {
			return apperr.ToHTTPError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Collect(c echo.Context) error {
	id, err := h.requestID(c)
	if err != nil {
		return err
	}
	var body struct {
		CollectedSamples   []string `json:"collectedSamples"`
		PhlebotomyComments string   `json:"phlebotomyComments"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.ToHTTPError(apperr.Validation("body", "malformed request body: %v", err))
	}
	req, err := h.svc.Collect(c.Request().Context(), id, body.CollectedSamples, body.PhlebotomyComments)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) UpdateResults(c echo.Context) error {
	id, err := h.requestID(c)
	if err != nil {
		return err
	}
	var body struct {
		TestID  string        `json:"testId"`
		Results []ResultEntry `json:"results"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.ToHTTPError(apperr.Validation("body", "malformed request body: %v", err))
	}
	req, err := h.svc.UpdateResults(c.Request().Context(), id, body.TestID, body.Results)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) UpdateAllResults(c echo.Context) error {
	id, err := h.requestID(c)
	if err != nil {
		return err
	}
	var body struct {
		Results map[string][]ResultEntry `json:"results"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.ToHTTPError(apperr.Validation("body", "malformed request body: %v", err))
	}
	req, err := h.svc.UpdateAllResults(c.Request().Context(), id, body.Results)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) UpdateComment(c echo.Context) error {
	id, err := h.requestID(c)
	if err != nil {
		return err
	}
	var body struct {
		Comments string `json:"comments"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.ToHTTPError(apperr.Validation("body", "malformed request body: %v", err))
	}
	req, err := h.svc.UpdateComment(c.Request().Context(), id, body.Comments)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) Verify(c echo.Context) error {
	id, err := h.requestID(c)
	if err != nil {
		return err
	}
	var body struct {
		Results map[string][]ResultEntry `json:"results"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.ToHTTPError(apperr.Validation("body", "malformed request body: %v", err))
	}
	req, err := h.svc.Verify(c.Request().Context(), id, body.Results)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) Interpret(c echo.Context) error {
	id, err := h.requestID(c)
	if err != nil {
		return err
	}
	req, err := h.svc.Interpret(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}
