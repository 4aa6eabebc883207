package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"academics/internal/service"
)

// StatsHandler serves the administration dashboards.
type StatsHandler struct {
	svc service.StatsService
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(svc service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Dashboard godoc
// @Summary Headline figures, enrollment trends and departement distribution
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/dashboard [get]
func (h *StatsHandler) Dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Performance godoc
// @Summary Grade averages and pass rates per module
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param academic_year query string false "Academic year"
// @Success 200 {object} service.Performance
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/performance [get]
func (h *StatsHandler) Performance(c echo.Context) error {
	p, err := h.svc.Performance(c.Request().Context(), c.QueryParam("academic_year"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
