package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"academics/internal/cache"
	apperrors "academics/internal/errors"
	"academics/internal/model"
	"academics/internal/repository"
)

// DepartementInput carries departement fields.
type DepartementInput struct {
	Code        string
	Name        string
	Description string
}

// FiliereInput carries filiere fields.
type FiliereInput struct {
	Code          string
	Name          string
	Description   string
	DepartementID uint
}

// ModuleInput carries module fields.
type ModuleInput struct {
	Code         string
	Name         string
	Semestre     string
	FiliereID    uint
	EnseignantID *uint
}

// CatalogueService manages departements, filieres and modules.
type CatalogueService interface {
	ListDepartements(ctx context.Context) ([]model.Departement, error)
	GetDepartement(ctx context.Context, id uint) (*model.Departement, error)
	CreateDepartement(ctx context.Context, in DepartementInput) (*model.Departement, error)
	UpdateDepartement(ctx context.Context, id uint, in DepartementInput) (*model.Departement, error)
	DeleteDepartement(ctx context.Context, id uint) error

	ListFilieres(ctx context.Context, filter repository.FiliereFilter) ([]model.Filiere, error)
	GetFiliere(ctx context.Context, id uint) (*model.Filiere, error)
	CreateFiliere(ctx context.Context, in FiliereInput) (*model.Filiere, error)
	UpdateFiliere(ctx context.Context, id uint, in FiliereInput) (*model.Filiere, error)
	DeleteFiliere(ctx context.Context, id uint) error

	ListModules(ctx context.Context, filter repository.ModuleFilter) ([]model.Module, error)
	GetModule(ctx context.Context, id uint) (*model.Module, error)
	CreateModule(ctx context.Context, in ModuleInput) (*model.Module, error)
	UpdateModule(ctx context.Context, id uint, in ModuleInput) (*model.Module, error)
	DeleteModule(ctx context.Context, id uint) error
}

type catalogueService struct {
	departements repository.DepartementRepository
	filieres     repository.FiliereRepository
	modules      repository.ModuleRepository
	users        repository.UserRepository
	cache        *cache.Client
}

// NewCatalogueService wires the catalogue repositories. Module writes drop the
// cached dashboard.
func NewCatalogueService(
	departements repository.DepartementRepository,
	filieres repository.FiliereRepository,
	modules repository.ModuleRepository,
	users repository.UserRepository,
	cache *cache.Client,
) CatalogueService {
	return &catalogueService{
		departements: departements,
		filieres:     filieres,
		modules:      modules,
		users:        users,
		cache:        cache,
	}
}

// writeError maps constraint violations of catalogue writes.
func writeError(err error) error {
	switch {
	case repository.IsDuplicate(err):
		return apperrors.ErrDuplicateCode
	case repository.IsForeignKey(err):
		return apperrors.ErrInUse
	default:
		return err
	}
}

func (s *catalogueService) ListDepartements(ctx context.Context) ([]model.Departement, error) {
	return s.departements.List(ctx)
}

func (s *catalogueService) GetDepartement(ctx context.Context, id uint) (*model.Departement, error) {
	return s.departements.FindByID(ctx, id)
}

func (s *catalogueService) CreateDepartement(ctx context.Context, in DepartementInput) (*model.Departement, error) {
	d := &model.Departement{
		Code:        normalizeCode(in.Code),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	if err := s.departements.Create(ctx, d); err != nil {
		return nil, writeError(err)
	}
	return d, nil
}

func (s *catalogueService) UpdateDepartement(ctx context.Context, id uint, in DepartementInput) (*model.Departement, error) {
	d, err := s.departements.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Code = normalizeCode(in.Code)
	d.Name = strings.TrimSpace(in.Name)
	d.Description = in.Description
	if err := s.departements.Update(ctx, d); err != nil {
		return nil, writeError(err)
	}
	return d, nil
}

func (s *catalogueService) DeleteDepartement(ctx context.Context, id uint) error {
	return writeError(s.departements.Delete(ctx, id))
}

func (s *catalogueService) ListFilieres(ctx context.Context, filter repository.FiliereFilter) ([]model.Filiere, error) {
	return s.filieres.List(ctx, filter)
}

func (s *catalogueService) GetFiliere(ctx context.Context, id uint) (*model.Filiere, error) {
	return s.filieres.FindByID(ctx, id)
}

func (s *catalogueService) CreateFiliere(ctx context.Context, in FiliereInput) (*model.Filiere, error) {
	if err := s.checkDepartement(ctx, in.DepartementID); err != nil {
		return nil, err
	}
	f := &model.Filiere{
		Code:          normalizeCode(in.Code),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		DepartementID: in.DepartementID,
	}
	if err := s.filieres.Create(ctx, f); err != nil {
		return nil, writeError(err)
	}
	return s.filieres.FindByID(ctx, f.ID)
}

func (s *catalogueService) UpdateFiliere(ctx context.Context, id uint, in FiliereInput) (*model.Filiere, error) {
	f, err := s.filieres.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDepartement(ctx, in.DepartementID); err != nil {
		return nil, err
	}
	f.Code = normalizeCode(in.Code)
	f.Name = strings.TrimSpace(in.Name)
	f.Description = in.Description
	f.DepartementID = in.DepartementID
	f.Departement = nil
	if err := s.filieres.Update(ctx, f); err != nil {
		return nil, writeError(err)
	}
	return s.filieres.FindByID(ctx, id)
}

func (s *catalogueService) DeleteFiliere(ctx context.Context, id uint) error {
	return writeError(s.filieres.Delete(ctx, id))
}

func (s *catalogueService) ListModules(ctx context.Context, filter repository.ModuleFilter) ([]model.Module, error) {
	return s.modules.List(ctx, filter)
}

func (s *catalogueService) GetModule(ctx context.Context, id uint) (*model.Module, error) {
	return s.modules.FindByID(ctx, id)
}

func (s *catalogueService) CreateModule(ctx context.Context, in ModuleInput) (*model.Module, error) {
	if err := s.checkModuleRefs(ctx, in); err != nil {
		return nil, err
	}
	m := &model.Module{
		Code:         normalizeCode(in.Code),
		Name:         strings.TrimSpace(in.Name),
		Semestre:     strings.ToUpper(in.Semestre),
		FiliereID:    in.FiliereID,
		EnseignantID: in.EnseignantID,
	}
	if err := s.modules.Create(ctx, m); err != nil {
		return nil, writeError(err)
	}
	_ = s.cache.Delete(ctx, dashboardCacheKey)
	return s.modules.FindByID(ctx, m.ID)
}

func (s *catalogueService) UpdateModule(ctx context.Context, id uint, in ModuleInput) (*model.Module, error) {
	m, err := s.modules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkModuleRefs(ctx, in); err != nil {
		return nil, err
	}
	m.Code = normalizeCode(in.Code)
	m.Name = strings.TrimSpace(in.Name)
	m.Semestre = strings.ToUpper(in.Semestre)
	m.FiliereID = in.FiliereID
	m.EnseignantID = in.EnseignantID
	m.Filiere = nil
	if err := s.modules.Update(ctx, m); err != nil {
		return nil, writeError(err)
	}
	return s.modules.FindByID(ctx, id)
}

func (s *catalogueService) DeleteModule(ctx context.Context, id uint) error {
	if err := s.modules.Delete(ctx, id); err != nil {
		return writeError(err)
	}
	_ = s.cache.Delete(ctx, dashboardCacheKey)
	return nil
}

func (s *catalogueService) checkDepartement(ctx context.Context, id uint) error {
	if _, err := s.departements.FindByID(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: departement %d does not exist", apperrors.ErrInvalidReference, id)
		}
		return err
	}
	return nil
}

func (s *catalogueService) checkModuleRefs(ctx context.Context, in ModuleInput) error {
	if _, err := s.filieres.FindByID(ctx, in.FiliereID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: filiere %d does not exist", apperrors.ErrInvalidReference, in.FiliereID)
		}
		return err
	}
	if in.EnseignantID == nil {
		return nil
	}
	teacher, err := s.users.FindByID(ctx, *in.EnseignantID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user %d does not exist", apperrors.ErrInvalidReference, *in.EnseignantID)
		}
		return err
	}
	if teacher.Role != model.RoleTeacher {
		return fmt.Errorf("%w: user %d is not a teacher", apperrors.ErrInvalidReference, teacher.ID)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
