package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "academics/internal/errors"
	"academics/internal/model"
	"academics/internal/repository"
)

// GradeInput is one line of a bulk grade entry.
type GradeInput struct {
	StudentID    uint
	NoteControle decimal.Decimal
	NoteExamen   decimal.Decimal
}

// StudentGrade is a student of a module with their current grade, if any.
type StudentGrade struct {
	StudentID    uint             `json:"student_id"`
	StudentName  string           `json:"student_name"`
	Email        string           `json:"email"`
	NoteControle *decimal.Decimal `json:"note_controle"`
	NoteExamen   *decimal.Decimal `json:"note_examen"`
	NoteFinale   *decimal.Decimal `json:"note_finale"`
}

// ModuleStudents is the grade sheet of a module for one academic year.
type ModuleStudents struct {
	Module       model.Module   `json:"module"`
	AcademicYear string         `json:"academic_year"`
	Students     []StudentGrade `json:"students"`
}

// NoteService manages grades.
type NoteService interface {
	List(ctx context.Context, actor Actor, filter repository.NoteFilter) ([]model.Note, error)
	MyModules(ctx context.Context, actor Actor, academicYear string) ([]model.ModuleWithCount, error)
	ModuleStudents(ctx context.Context, actor Actor, moduleID uint, academicYear string) (*ModuleStudents, error)
	// BulkGrade upserts the grades of several students of one module atomically.
	BulkGrade(ctx context.Context, actor Actor, moduleID uint, academicYear string, grades []GradeInput) ([]model.Note, error)
	Delete(ctx context.Context, id uint) error
}

type noteService struct {
	notes        repository.NoteRepository
	modules      repository.ModuleRepository
	inscriptions repository.InscriptionRepository
}

// NewNoteService wires the grade repositories.
func NewNoteService(
	notes repository.NoteRepository,
	modules repository.ModuleRepository,
	inscriptions repository.InscriptionRepository,
) NoteService {
	return &noteService{notes: notes, modules: modules, inscriptions: inscriptions}
}

func (s *noteService) List(ctx context.Context, actor Actor, filter repository.NoteFilter) ([]model.Note, error) {
	switch actor.Role {
	case model.RoleStudent:
		filter.StudentID = &actor.UserID
	case model.RoleTeacher:
		filter.EnseignantID = &actor.UserID
	case model.RoleAdmin, model.RoleDirection:
	default:
		return nil, apperrors.ErrForbidden
	}
	return s.notes.List(ctx, filter)
}

func (s *noteService) MyModules(ctx context.Context, actor Actor, academicYear string) ([]model.ModuleWithCount, error) {
	if actor.Role != model.RoleTeacher {
		return nil, apperrors.ErrForbidden
	}
	if academicYear != "" && !model.ValidAcademicYear(academicYear) {
		return nil, apperrors.ErrInvalidAcademicYear
	}
	return s.modules.ListWithStudentCount(ctx, repository.ModuleFilter{EnseignantID: &actor.UserID}, academicYear)
}

func (s *noteService) ModuleStudents(ctx context.Context, actor Actor, moduleID uint, academicYear string) (*ModuleStudents, error) {
	academicYear = strings.TrimSpace(academicYear)
	if !model.ValidAcademicYear(academicYear) {
		return nil, apperrors.ErrInvalidAcademicYear
	}
	module, err := s.gradableModule(ctx, actor, moduleID)
	if err != nil {
		return nil, err
	}

	students, err := s.inscriptions.ValidatedStudents(ctx, module.FiliereID, academicYear)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.List(ctx, repository.NoteFilter{ModuleID: &moduleID, AcademicYear: academicYear})
	if err != nil {
		return nil, err
	}
	byStudent := make(map[uint]model.Note, len(notes))
	for _, n := range notes {
		byStudent[n.StudentID] = n
	}

	sheet := &ModuleStudents{Module: *module, AcademicYear: academicYear, Students: make([]StudentGrade, 0, len(students))}
	for i := range students {
		st := &students[i]
		row := StudentGrade{StudentID: st.ID, StudentName: st.FullName(), Email: st.Email}
		if n, ok := byStudent[st.ID]; ok {
			c, e, f := n.NoteControle, n.NoteExamen, n.NoteFinale
			row.NoteControle, row.NoteExamen, row.NoteFinale = &c, &e, &f
		}
		sheet.Students = append(sheet.Students, row)
	}
	return sheet, nil
}

func (s *noteService) BulkGrade(ctx context.Context, actor Actor, moduleID uint, academicYear string, grades []GradeInput) ([]model.Note, error) {
	academicYear = strings.TrimSpace(academicYear)
	if !model.ValidAcademicYear(academicYear) {
		return nil, apperrors.ErrInvalidAcademicYear
	}
	module, err := s.gradableModule(ctx, actor, moduleID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.inscriptions.ValidatedStudents(ctx, module.FiliereID, academicYear)
	if err != nil {
		return nil, err
	}
	allowed := make(map[uint]bool, len(enrolled))
	for _, u := range enrolled {
		allowed[u.ID] = true
	}

	grader := actor.UserID
	notes := make([]model.Note, 0, len(grades))
	seen := make(map[uint]bool, len(grades))
	for _, g := range grades {
		if !model.ValidGrade(g.NoteControle) || !model.ValidGrade(g.NoteExamen) {
			return nil, fmt.Errorf("%w (student %d)", apperrors.ErrInvalidGrade, g.StudentID)
		}
		if !allowed[g.StudentID] {
			return nil, fmt.Errorf("%w: student %d", apperrors.ErrStudentNotEnrolled, g.StudentID)
		}
		if seen[g.StudentID] {
			return nil, fmt.Errorf("%w: student %d listed twice", apperrors.ErrInvalidReference, g.StudentID)
		}
		seen[g.StudentID] = true
		notes = append(notes, model.Note{
			StudentID:    g.StudentID,
			ModuleID:     moduleID,
			AcademicYear: academicYear,
			NoteControle: g.NoteControle.Round(2),
			NoteExamen:   g.NoteExamen.Round(2),
			NoteFinale:   model.FinalGrade(g.NoteControle, g.NoteExamen),
			SaisieParID:  &grader,
		})
	}

	if err := s.notes.UpsertBatch(ctx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *noteService) Delete(ctx context.Context, id uint) error {
	return s.notes.Delete(ctx, id)
}

// gradableModule loads the module and checks the actor may grade it.
func (s *noteService) gradableModule(ctx context.Context, actor Actor, moduleID uint) (*model.Module, error) {
	if !actor.Role.CanGrade() {
		return nil, apperrors.ErrForbidden
	}
	module, err := s.modules.FindByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case model.RoleAdmin:
		return module, nil
	case model.RoleTeacher:
		if module.EnseignantID == nil || *module.EnseignantID != actor.UserID {
			return nil, apperrors.ErrForbidden
		}
		return module, nil
	default:
		return nil, apperrors.ErrForbidden
	}
}
