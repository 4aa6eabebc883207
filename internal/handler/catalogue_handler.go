package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"academics/internal/repository"
	"academics/internal/service"
)

// CatalogueHandler serves departements, filieres and modules.
type CatalogueHandler struct {
	svc service.CatalogueService
}

// NewCatalogueHandler creates a catalogue handler.
func NewCatalogueHandler(svc service.CatalogueService) *CatalogueHandler {
	return &CatalogueHandler{svc: svc}
}

// DepartementRequest is the departement write payload.
type DepartementRequest struct {
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

// FiliereRequest is the filiere write payload.
type FiliereRequest struct {
	Code          string `json:"code" validate:"required,max=20"`
	Name          string `json:"name" validate:"required,max=255"`
	Description   string `json:"description"`
	DepartementID uint   `json:"departement" validate:"required"`
}

// ModuleRequest is the module write payload.
type ModuleRequest struct {
	Code         string `json:"code" validate:"required,max=20"`
	Name         string `json:"name" validate:"required,max=255"`
	Semestre     string `json:"semestre" validate:"required,oneof=S1 S2 S3 S4 S5 S6 S7 S8 S9 S10 s1 s2 s3 s4 s5 s6 s7 s8 s9 s10"`
	FiliereID    uint   `json:"filiere" validate:"required"`
	EnseignantID *uint  `json:"enseignant"`
}

// ListDepartements godoc
// @Summary List departements
// @Tags catalogue
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Departement
// @Router /departements [get]
func (h *CatalogueHandler) ListDepartements(c echo.Context) error {
	out, err := h.svc.ListDepartements(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetDepartement godoc
// @Summary Get departement
// @Tags catalogue
// @Produce json
// @Security BearerAuth
// @Param id path int true "Departement ID"
// @Success 200 {object} model.Departement
// @Failure 404 {object} errors.ErrorResponse
// @Router /departements/{id} [get]
func (h *CatalogueHandler) GetDepartement(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.GetDepartement(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// CreateDepartement godoc
// @Summary Create departement
// @Tags catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DepartementRequest true "Departement"
// @Success 201 {object} model.Departement
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /departements [post]
func (h *CatalogueHandler) CreateDepartement(c echo.Context) error {
	var req DepartementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	d, err := h.svc.CreateDepartement(c.Request().Context(), service.DepartementInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// UpdateDepartement godoc
// @Summary Update departement
// @Tags catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Departement ID"
// @Param request body DepartementRequest true "Departement"
// @Success 200 {object} model.Departement
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /departements/{id} [put]
func (h *CatalogueHandler) UpdateDepartement(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req DepartementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	d, err := h.svc.UpdateDepartement(c.Request().Context(), id, service.DepartementInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// DeleteDepartement godoc
// @Summary Delete departement
// @Tags catalogue
// @Security BearerAuth
// @Param id path int true "Departement ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /departements/{id} [delete]
func (h *CatalogueHandler) DeleteDepartement(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDepartement(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListFilieres godoc
// @Summary List filieres
// @Tags catalogue
// @Produce json
// @Security BearerAuth
// @Param departement query int false "Departement ID"
// @Success 200 {array} model.Filiere
// @Router /filieres [get]
func (h *CatalogueHandler) ListFilieres(c echo.Context) error {
	depID, err := optionalUint(c, "departement")
	if err != nil {
		return err
	}
	out, err := h.svc.ListFilieres(c.Request().Context(), repository.FiliereFilter{DepartementID: depID})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetFiliere godoc
// @Summary Get filiere
// @Tags catalogue
// @Produce json
// @Security BearerAuth
// @Param id path int true "Filiere ID"
// @Success 200 {object} model.Filiere
// @Failure 404 {object} errors.ErrorResponse
// @Router /filieres/{id} [get]
func (h *CatalogueHandler) GetFiliere(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	f, err := h.svc.GetFiliere(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// CreateFiliere godoc
// @Summary Create filiere
// @Tags catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FiliereRequest true "Filiere"
// @Success 201 {object} model.Filiere
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /filieres [post]
func (h *CatalogueHandler) CreateFiliere(c echo.Context) error {
	var req FiliereRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	f, err := h.svc.CreateFiliere(c.Request().Context(), service.FiliereInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// UpdateFiliere godoc
// @Summary Update filiere
// @Tags catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Filiere ID"
// @Param request body FiliereRequest true "Filiere"
// @Success 200 {object} model.Filiere
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /filieres/{id} [put]
func (h *CatalogueHandler) UpdateFiliere(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req FiliereRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	f, err := h.svc.UpdateFiliere(c.Request().Context(), id, service.FiliereInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

// DeleteFiliere godoc
// @Summary Delete filiere
// @Tags catalogue
// @Security BearerAuth
// @Param id path int true "Filiere ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /filieres/{id} [delete]
func (h *CatalogueHandler) DeleteFiliere(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteFiliere(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListModules godoc
// @Summary List modules
// @Tags catalogue
// @Produce json
// @Security BearerAuth
// @Param filiere query int false "Filiere ID"
// @Param enseignant query int false "Teacher ID"
// @Success 200 {array} model.Module
// @Router /modules [get]
func (h *CatalogueHandler) ListModules(c echo.Context) error {
	filiereID, err := optionalUint(c, "filiere")
	if err != nil {
		return err
	}
	teacherID, err := optionalUint(c, "enseignant")
	if err != nil {
		return err
	}
	out, err := h.svc.ListModules(c.Request().Context(), repository.ModuleFilter{FiliereID: filiereID, EnseignantID: teacherID})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetModule godoc
// @Summary Get module
// @Tags catalogue
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Success 200 {object} model.Module
// @Failure 404 {object} errors.ErrorResponse
// @Router /modules/{id} [get]
func (h *CatalogueHandler) GetModule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.GetModule(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// CreateModule godoc
// @Summary Create module
// @Tags catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ModuleRequest true "Module"
// @Success 201 {object} model.Module
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /modules [post]
func (h *CatalogueHandler) CreateModule(c echo.Context) error {
	var req ModuleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.svc.CreateModule(c.Request().Context(), service.ModuleInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateModule godoc
// @Summary Update module
// @Tags catalogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param request body ModuleRequest true "Module"
// @Success 200 {object} model.Module
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /modules/{id} [put]
func (h *CatalogueHandler) UpdateModule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req ModuleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.svc.UpdateModule(c.Request().Context(), id, service.ModuleInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteModule godoc
// @Summary Delete module
// @Tags catalogue
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /modules/{id} [delete]
func (h *CatalogueHandler) DeleteModule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteModule(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
