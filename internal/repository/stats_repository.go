package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"academics/internal/model"
)

// YearCount is a count per academic year.
type YearCount struct {
	AcademicYear string `json:"academic_year"`
	Total        int64  `json:"total"`
}

// DepartementCount is a count per departement.
type DepartementCount struct {
	DepartementID uint   `json:"departement_id"`
	Name          string `json:"name"`
	Total         int64  `json:"total"`
}

// ModuleGrades aggregates the final grades of one module.
type ModuleGrades struct {
	ModuleID uint    `json:"module_id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Graded   int64   `json:"graded"`
	Passed   int64   `json:"passed"`
	Average  float64 `json:"average"`
}

// StatsRepository runs read-only aggregate queries.
type StatsRepository interface {
	CountUsersByRole(ctx context.Context) (map[model.Role]int64, error)
	CountModules(ctx context.Context) (int64, error)
	CountInscriptionsByStatus(ctx context.Context) (map[model.InscriptionStatus]int64, error)
	EnrollmentTrends(ctx context.Context) ([]YearCount, error)
	DepartementDistribution(ctx context.Context) ([]DepartementCount, error)
	ModulePerformance(ctx context.Context, academicYear string) ([]ModuleGrades, error)
}

type roleCount struct {
	Role  model.Role
	Total int64
}

type statusCount struct {
	Status model.InscriptionStatus
	Total  int64
}

type statsRepository struct{ store }

// NewStatsRepository builds a GORM-backed repository.
func NewStatsRepository(db *gorm.DB, timeout time.Duration) StatsRepository {
	return &statsRepository{store: newStore(db, timeout)}
}

func (r *statsRepository) CountUsersByRole(ctx context.Context) (map[model.Role]int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var rows []roleCount
	if err := db.Model(&model.User{}).Select("role, COUNT(*) AS total").Group("role").Scan(&rows).Error; err != nil {
		return nil, translate("count users by role", err)
	}
	out := make(map[model.Role]int64, len(rows))
	for _, rw := range rows {
		out[rw.Role] = rw.Total
	}
	return out, nil
}

func (r *statsRepository) CountModules(ctx context.Context) (int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var total int64
	if err := db.Model(&model.Module{}).Count(&total).Error; err != nil {
		return 0, translate("count modules", err)
	}
	return total, nil
}

func (r *statsRepository) CountInscriptionsByStatus(ctx context.Context) (map[model.InscriptionStatus]int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var rows []statusCount
	if err := db.Model(&model.Inscription{}).Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, translate("count inscriptions by status", err)
	}
	out := make(map[model.InscriptionStatus]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Total
	}
	return out, nil
}

func (r *statsRepository) EnrollmentTrends(ctx context.Context) ([]YearCount, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	out := []YearCount{}
	err := db.Model(&model.Inscription{}).
		Select("academic_year, COUNT(*) AS total").
		Where("status = ?", model.InscriptionValidated).
		Group("academic_year").
		Order("academic_year").
		Scan(&out).Error
	if err != nil {
		return nil, translate("enrollment trends", err)
	}
	return out, nil
}

func (r *statsRepository) DepartementDistribution(ctx context.Context) ([]DepartementCount, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	out := []DepartementCount{}
	err := db.Table("departements").
		Select("departements.id AS departement_id, departements.name AS name, COUNT(DISTINCT inscriptions.student_id) AS total").
		Joins("LEFT JOIN filieres ON filieres.departement_id = departements.id").
		Joins("LEFT JOIN inscriptions ON inscriptions.filiere_id = filieres.id AND inscriptions.status = ?", model.InscriptionValidated).
		Group("departements.id, departements.name").
		Order("departements.name").
		Scan(&out).Error
	if err != nil {
		return nil, translate("departement distribution", err)
	}
	return out, nil
}

func (r *statsRepository) ModulePerformance(ctx context.Context, academicYear string) ([]ModuleGrades, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	join := "JOIN notes ON notes.module_id = modules.id"
	args := []interface{}{}
	if academicYear != "" {
		join += " AND notes.academic_year = ?"
		args = append(args, academicYear)
	}

	out := []ModuleGrades{}
	err := db.Table("modules").
		Select("modules.id AS module_id, modules.code AS code, modules.name AS name, "+
			"COUNT(notes.id) AS graded, "+
			"SUM(CASE WHEN notes.note_finale >= ? THEN 1 ELSE 0 END) AS passed, "+
			"AVG(notes.note_finale) AS average", model.PassingGrade.InexactFloat64()).
		Joins(join, args...).
		Group("modules.id, modules.code, modules.name").
		Order("modules.code").
		Scan(&out).Error
	if err != nil {
		return nil, translate("module performance", err)
	}
	return out, nil
}
