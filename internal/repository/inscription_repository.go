package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"academics/internal/model"
)

// InscriptionFilter narrows inscription listings.
type InscriptionFilter struct {
	StudentID    *uint
	FiliereID    *uint
	Status       *model.InscriptionStatus
	AcademicYear string
}

// InscriptionRepository persists enrollments.
type InscriptionRepository interface {
	Create(ctx context.Context, i *model.Inscription) error
	Update(ctx context.Context, i *model.Inscription) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Inscription, error)
	List(ctx context.Context, filter InscriptionFilter) ([]model.Inscription, error)
	// ValidatedStudents returns students with a validated inscription in
	// filiereID for academicYear, ordered by last name.
	ValidatedStudents(ctx context.Context, filiereID uint, academicYear string) ([]model.User, error)
}

type inscriptionRepository struct{ store }

// NewInscriptionRepository builds a GORM-backed repository.
func NewInscriptionRepository(db *gorm.DB, timeout time.Duration) InscriptionRepository {
	return &inscriptionRepository{store: newStore(db, timeout)}
}

func (r *inscriptionRepository) Create(ctx context.Context, i *model.Inscription) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return translate("create inscription", db.Omit("Student", "Filiere").Create(i).Error)
}

func (r *inscriptionRepository) Update(ctx context.Context, i *model.Inscription) error {
	db, cancel := r.conn(ctx)
	defer cancel()
	return translate("update inscription", db.Omit("Student", "Filiere").Save(i).Error)
}

func (r *inscriptionRepository) Delete(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, "delete inscription", &model.Inscription{}, id)
}

func (r *inscriptionRepository) FindByID(ctx context.Context, id uint) (*model.Inscription, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var i model.Inscription
	if err := db.Preload("Filiere").Preload("Student").First(&i, id).Error; err != nil {
		return nil, translate("find inscription", err)
	}
	return &i, nil
}

func (r *inscriptionRepository) List(ctx context.Context, filter InscriptionFilter) ([]model.Inscription, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	q := db.Preload("Filiere").Preload("Student").Order("created_at DESC, id DESC")
	if filter.StudentID != nil {
		q = q.Where("student_id = ?", *filter.StudentID)
	}
	if filter.FiliereID != nil {
		q = q.Where("filiere_id = ?", *filter.FiliereID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.AcademicYear != "" {
		q = q.Where("academic_year = ?", filter.AcademicYear)
	}
	out := []model.Inscription{}
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("list inscriptions", err)
	}
	return out, nil
}

func (r *inscriptionRepository) ValidatedStudents(ctx context.Context, filiereID uint, academicYear string) ([]model.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	out := []model.User{}
	err := db.Model(&model.User{}).
		Select("users.*").
		Joins("JOIN inscriptions ON inscriptions.student_id = users.id").
		Where("inscriptions.filiere_id = ? AND inscriptions.academic_year = ? AND inscriptions.status = ?",
			filiereID, academicYear, model.InscriptionValidated).
		Order("users.last_name, users.first_name, users.id").
		Find(&out).Error
	if err != nil {
		return nil, translate("list validated students", err)
	}
	return out, nil
}
