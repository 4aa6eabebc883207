package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"academics/internal/model"
	"academics/internal/repository"
	"academics/internal/service"
)

// NoteHandler serves grade endpoints.
type NoteHandler struct {
	svc service.NoteService
}

// NewNoteHandler creates a note handler.
func NewNoteHandler(svc service.NoteService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

// GradeLine is one student's grades in a bulk entry.
type GradeLine struct {
	StudentID    uint             `json:"student_id" validate:"required"`
	NoteControle *decimal.Decimal `json:"note_controle" validate:"required" swaggertype:"string"`
	NoteExamen   *decimal.Decimal `json:"note_examen" validate:"required" swaggertype:"string"`
}

// BulkGradeRequest grades several students of one module at once.
type BulkGradeRequest struct {
	AcademicYear string      `json:"academic_year" validate:"required"`
	Grades       []GradeLine `json:"grades" validate:"required,min=1,dive"`
}

// BulkGradeResponse reports the saved notes.
type BulkGradeResponse struct {
	Saved int          `json:"saved"`
	Notes []model.Note `json:"notes"`
}

// List godoc
// @Summary List notes visible to the caller
// @Description Students see their own notes, teachers the notes of their modules.
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param module query int false "Module ID"
// @Param student query int false "Student ID"
// @Param academic_year query string false "Academic year"
// @Success 200 {array} model.Note
// @Router /notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	moduleID, err := optionalUint(c, "module")
	if err != nil {
		return err
	}
	studentID, err := optionalUint(c, "student")
	if err != nil {
		return err
	}
	notes, err := h.svc.List(c.Request().Context(), actorFrom(c), repository.NoteFilter{
		ModuleID:     moduleID,
		StudentID:    studentID,
		AcademicYear: c.QueryParam("academic_year"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, notes)
}

// MyModules godoc
// @Summary Modules taught by the caller with enrolled student counts
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param academic_year query string false "Academic year"
// @Success 200 {array} model.ModuleWithCount
// @Failure 403 {object} errors.ErrorResponse
// @Router /notes/my-modules [get]
func (h *NoteHandler) MyModules(c echo.Context) error {
	modules, err := h.svc.MyModules(c.Request().Context(), actorFrom(c), c.QueryParam("academic_year"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, modules)
}

// ModuleStudents godoc
// @Summary Grade sheet of a module
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param academic_year query string true "Academic year"
// @Success 200 {object} service.ModuleStudents
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/modules/{id}/students [get]
func (h *NoteHandler) ModuleStudents(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sheet, err := h.svc.ModuleStudents(c.Request().Context(), actorFrom(c), id, c.QueryParam("academic_year"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sheet)
}

// BulkGrade godoc
// @Summary Enter grades for several students of a module
// @Description All lines are saved or none is.
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param request body BulkGradeRequest true "Grades"
// @Success 200 {object} BulkGradeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /notes/modules/{id}/bulk [post]
func (h *NoteHandler) BulkGrade(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req BulkGradeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	grades := make([]service.GradeInput, 0, len(req.Grades))
	for _, g := range req.Grades {
		grades = append(grades, service.GradeInput{
			StudentID:    g.StudentID,
			NoteControle: *g.NoteControle,
			NoteExamen:   *g.NoteExamen,
		})
	}
	notes, err := h.svc.BulkGrade(c.Request().Context(), actorFrom(c), id, req.AcademicYear, grades)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, BulkGradeResponse{Saved: len(notes), Notes: notes})
}

// Delete godoc
// @Summary Delete a note
// @Tags notes
// @Security BearerAuth
// @Param id path int true "Note ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
