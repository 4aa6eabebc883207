package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"academics/internal/model"
)

// NoteFilter narrows note listings.
type NoteFilter struct {
	StudentID    *uint
	ModuleID     *uint
	EnseignantID *uint // notes of modules taught by this teacher
	AcademicYear string
}

// NoteRepository persists grades.
type NoteRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Note, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter NoteFilter) ([]model.Note, error)
	// UpsertBatch writes every note in a single transaction, keyed by
	// (student, module, academic year). Either all notes are written or none.
	UpsertBatch(ctx context.Context, notes []model.Note) error
}

type noteRepository struct{ store }

// NewNoteRepository builds a GORM-backed repository.
func NewNoteRepository(db *gorm.DB, timeout time.Duration) NoteRepository {
	return &noteRepository{store: newStore(db, timeout)}
}

func (r *noteRepository) FindByID(ctx context.Context, id uint) (*model.Note, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	var n model.Note
	if err := db.Preload("Module").First(&n, id).Error; err != nil {
		return nil, translate("find note", err)
	}
	return &n, nil
}

func (r *noteRepository) Delete(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, "delete note", &model.Note{}, id)
}

func (r *noteRepository) List(ctx context.Context, filter NoteFilter) ([]model.Note, error) {
	db, cancel := r.conn(ctx)
	defer cancel()
	q := db.Preload("Module").Preload("Student").Preload("SaisiePar").Order("notes.academic_year DESC, notes.module_id, notes.student_id")
	if filter.StudentID != nil {
		q = q.Where("notes.student_id = ?", *filter.StudentID)
	}
	if filter.ModuleID != nil {
		q = q.Where("notes.module_id = ?", *filter.ModuleID)
	}
	if filter.EnseignantID != nil {
		q = q.Where("notes.module_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Model(&model.Module{}).Select("id").Where("enseignant_id = ?", *filter.EnseignantID))
	}
	if filter.AcademicYear != "" {
		q = q.Where("notes.academic_year = ?", filter.AcademicYear)
	}
	out := []model.Note{}
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("list notes", err)
	}
	return out, nil
}

func (r *noteRepository) UpsertBatch(ctx context.Context, notes []model.Note) error {
	if len(notes) == 0 {
		return nil
	}
	db, cancel := r.conn(ctx)
	defer cancel()
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range notes {
			n := &notes[i]
			var existing model.Note
			err := tx.Where("student_id = ? AND module_id = ? AND academic_year = ?",
				n.StudentID, n.ModuleID, n.AcademicYear).First(&existing).Error
			switch {
			case err == nil:
				existing.NoteControle = n.NoteControle
				existing.NoteExamen = n.NoteExamen
				existing.NoteFinale = n.NoteFinale
				existing.SaisieParID = n.SaisieParID
				if err := tx.Omit("Student", "Module", "SaisiePar").Save(&existing).Error; err != nil {
					return err
				}
				n.ID = existing.ID
				n.CreatedAt = existing.CreatedAt
				n.UpdatedAt = existing.UpdatedAt
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Omit("Student", "Module", "SaisiePar").Create(n).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
	return translate("upsert notes", err)
}
