package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"academics/internal/model"
)

// DepartementRepository persists departements.
type DepartementRepository interface {
	Create(ctx context.Context, d *model.Departement) error
	Update(ctx context.Context, d *model.Departement) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Departement, error)
	FindByCode(ctx context.Context, code string) (*model.Departement, error)
	List(ctx context.Context) ([]model.Departement, error)
}

// FiliereFilter narrows filiere listings.
type FiliereFilter struct {
	DepartementID *uint
}

// FiliereRepository persists filieres.
type FiliereRepository interface {
	Create(ctx context.Context, f *model.Filiere) error
	Update(ctx context.Context, f *model.Filiere) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Filiere, error)
	FindByCode(ctx context.Context, code string) (*model.Filiere, error)
	List(ctx context.Context, filter FiliereFilter) ([]model.Filiere, error)
}

// ModuleFilter narrows module listings.
type ModuleFilter struct {
	FiliereID    *uint
	EnseignantID *uint
}

// ModuleRepository persists modules.
type ModuleRepository interface {
	Create(ctx context.Context, m *model.Module) error
	Update(ctx context.Context, m *model.Module) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Module, error)
	FindByCode(ctx context.Context, code string) (*model.Module, error)
	List(ctx context.Context, filter ModuleFilter) ([]model.Module, error)
	// ListWithStudentCount adds the number of validated inscriptions in the
	// module's filiere for academicYear (all years when empty).
	ListWithStudentCount(ctx context.Context, filter ModuleFilter, academicYear string) ([]model.ModuleWithCount, error)
}

type departementRepository struct{ store }

// NewDepartementRepository builds a GORM-backed repository.
func NewDepartementRepository(db *gorm.DB, timeout time.Duration) DepartementRepository {
	return &departementRepository{store: newStore(db, timeout)}
}

func (r *departementRepository) Create(ctx context.Context, d *model.Departement) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return translate("create departement", db.Create(d).Error)
}

func (r *departementRepository) Update(ctx context.Context, d *model.Departement) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return translate("update departement", db.Save(d).Error)
}

func (r *departementRepository) Delete(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, "delete departement", &model.Departement{}, id)
}

func (r *departementRepository) FindByID(ctx context.Context, id uint) (*model.Departement, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var d model.Departement
	if err := db.First(&d, id).Error; err != nil {
		return nil, translate("find departement", err)
	}
	return &d, nil
}

func (r *departementRepository) FindByCode(ctx context.Context, code string) (*model.Departement, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var d model.Departement
	if err := db.Where("code = ?", code).First(&d).Error; err != nil {
		return nil, translate("find departement by code", err)
	}
	return &d, nil
}

func (r *departementRepository) List(ctx context.Context) ([]model.Departement, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	out := []model.Departement{}
	if err := db.Order("code").Find(&out).Error; err != nil {
		return nil, translate("list departements", err)
	}
	return out, nil
}

type filiereRepository struct{ store }

// NewFiliereRepository builds a GORM-backed repository.
func NewFiliereRepository(db *gorm.DB, timeout time.Duration) FiliereRepository {
	return &filiereRepository{store: newStore(db, timeout)}
}

func (r *filiereRepository) Create(ctx context.Context, f *model.Filiere) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return translate("create filiere", db.Omit("Departement").Create(f).Error)
}

func (r *filiereRepository) Update(ctx context.Context, f *model.Filiere) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return translate("update filiere", db.Omit("Departement").Save(f).Error)
}

func (r *filiereRepository) Delete(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, "delete filiere", &model.Filiere{}, id)
}

func (r *filiereRepository) FindByID(ctx context.Context, id uint) (*model.Filiere, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var f model.Filiere
	if err := db.Preload("Departement").First(&f, id).Error; err != nil {
		return nil, translate("find filiere", err)
	}
	return &f, nil
}

func (r *filiereRepository) FindByCode(ctx context.Context, code string) (*model.Filiere, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var f model.Filiere
	if err := db.Where("code = ?", code).First(&f).Error; err != nil {
		return nil, translate("find filiere by code", err)
	}
	return &f, nil
}

func (r *filiereRepository) List(ctx context.Context, filter FiliereFilter) ([]model.Filiere, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	q := db.Preload("Departement").Order("code")
	if filter.DepartementID != nil {
		q = q.Where("departement_id = ?", *filter.DepartementID)
	}
	out := []model.Filiere{}
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("list filieres", err)
	}
	return out, nil
}

type moduleRepository struct{ store }

// NewModuleRepository builds a GORM-backed repository.
func NewModuleRepository(db *gorm.DB, timeout time.Duration) ModuleRepository {
	return &moduleRepository{store: newStore(db, timeout)}
}

func (r *moduleRepository) Create(ctx context.Context, m *model.Module) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return translate("create module", db.Omit("Filiere", "Enseignant").Create(m).Error)
}

func (r *moduleRepository) Update(ctx context.Context, m *model.Module) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return translate("update module", db.Omit("Filiere", "Enseignant").Save(m).Error)
}

func (r *moduleRepository) Delete(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, "delete module", &model.Module{}, id)
}

func (r *moduleRepository) FindByID(ctx context.Context, id uint) (*model.Module, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var m model.Module
	if err := db.Preload("Filiere").First(&m, id).Error; err != nil {
		return nil, translate("find module", err)
	}
	return &m, nil
}

func (r *moduleRepository) FindByCode(ctx context.Context, code string) (*model.Module, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var m model.Module
	if err := db.Where("code = ?", code).First(&m).Error; err != nil {
		return nil, translate("find module by code", err)
	}
	return &m, nil
}

func (r *moduleRepository) List(ctx context.Context, filter ModuleFilter) ([]model.Module, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	out := []model.Module{}
	if err := applyModuleFilter(db.Preload("Filiere").Order("code"), filter).Find(&out).Error; err != nil {
		return nil, translate("list modules", err)
	}
	return out, nil
}

func (r *moduleRepository) ListWithStudentCount(ctx context.Context, filter ModuleFilter, academicYear string) ([]model.ModuleWithCount, error) {
	modules, err := r.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return []model.ModuleWithCount{}, nil
	}

	filiereIDs := make([]uint, 0, len(modules))
	for _, m := range modules {
		filiereIDs = append(filiereIDs, m.FiliereID)
	}

	type row struct {
		FiliereID uint
		Total     int64
	}
	var rows []row

	db, cancel := r.conn(ctx)
	defer cancel()
	q := db.Model(&model.Inscription{}).
		Select("filiere_id, COUNT(*) AS total").
		Where("status = ? AND filiere_id IN ?", model.InscriptionValidated, filiereIDs).
		Group("filiere_id")
	if academicYear != "" {
		q = q.Where("academic_year = ?", academicYear)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, translate("count module students", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, rw := range rows {
		counts[rw.FiliereID] = rw.Total
	}
	out := make([]model.ModuleWithCount, 0, len(modules))
	for _, m := range modules {
		out = append(out, model.ModuleWithCount{Module: m, StudentCount: counts[m.FiliereID]})
	}
	return out, nil
}

func applyModuleFilter(q *gorm.DB, filter ModuleFilter) *gorm.DB {
	if filter.FiliereID != nil {
		q = q.Where("filiere_id = ?", *filter.FiliereID)
	}
	if filter.EnseignantID != nil {
		q = q.Where("enseignant_id = ?", *filter.EnseignantID)
	}
	return q
}

func (s store) deleteByID(ctx context.Context, op string, value interface{}, id uint) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	res := db.Delete(value, id)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(op, gorm.ErrRecordNotFound)
	}
	return nil
}
