package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"academics/internal/model"
	"academics/internal/repository"
	"academics/internal/service"
)

// InscriptionHandler serves enrollment endpoints.
type InscriptionHandler struct {
	svc service.InscriptionService
}

// NewInscriptionHandler creates an inscription handler.
func NewInscriptionHandler(svc service.InscriptionService) *InscriptionHandler {
	return &InscriptionHandler{svc: svc}
}

// ApplyRequest is an enrollment request. Student is only read for admins.
type ApplyRequest struct {
	Student      uint   `json:"student"`
	Filiere      uint   `json:"filiere" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// ReviewRequest validates or rejects a pending inscription.
type ReviewRequest struct {
	Status          model.InscriptionStatus `json:"status" validate:"required,oneof=VALIDATED REJECTED"`
	RejectionReason string                  `json:"rejection_reason"`
}

// Apply godoc
// @Summary Apply for a filiere
// @Tags inscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ApplyRequest true "Inscription"
// @Success 201 {object} model.Inscription
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /inscriptions [post]
func (h *InscriptionHandler) Apply(c echo.Context) error {
	var req ApplyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ins, err := h.svc.Apply(c.Request().Context(), actorFrom(c), service.ApplyInput{
		StudentID:    req.Student,
		FiliereID:    req.Filiere,
		AcademicYear: req.AcademicYear,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, ins)
}

// List godoc
// @Summary List inscriptions
// @Description Students only see their own inscriptions.
// @Tags inscriptions
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, VALIDATED or REJECTED"
// @Param filiere query int false "Filiere ID"
// @Param academic_year query string false "Academic year, e.g. 2024-2025"
// @Success 200 {array} model.Inscription
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /inscriptions [get]
func (h *InscriptionHandler) List(c echo.Context) error {
	filter := repository.InscriptionFilter{AcademicYear: c.QueryParam("academic_year")}
	if raw := c.QueryParam("status"); raw != "" {
		status := model.InscriptionStatus(raw)
		if !status.Valid() {
			return badRequest("invalid status", "INVALID_QUERY")
		}
		filter.Status = &status
	}
	filiereID, err := optionalUint(c, "filiere")
	if err != nil {
		return err
	}
	filter.FiliereID = filiereID

	out, err := h.svc.List(c.Request().Context(), actorFrom(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary Get inscription
// @Tags inscriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Inscription ID"
// @Success 200 {object} model.Inscription
// @Failure 404 {object} errors.ErrorResponse
// @Router /inscriptions/{id} [get]
func (h *InscriptionHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ins, err := h.svc.Get(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ins)
}

// Review godoc
// @Summary Validate or reject a pending inscription
// @Tags inscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Inscription ID"
// @Param request body ReviewRequest true "Decision"
// @Success 200 {object} model.Inscription
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /inscriptions/{id}/validate [patch]
func (h *InscriptionHandler) Review(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req ReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ins, err := h.svc.Review(c.Request().Context(), id, req.Status, req.RejectionReason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ins)
}

// Delete godoc
// @Summary Delete inscription
// @Tags inscriptions
// @Security BearerAuth
// @Param id path int true "Inscription ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /inscriptions/{id} [delete]
func (h *InscriptionHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
