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

// ApplyInput carries an enrollment request. StudentID is honoured only for admins.
type ApplyInput struct {
	StudentID    uint
	FiliereID    uint
	AcademicYear string
}

// InscriptionService manages enrollment requests and their review.
type InscriptionService interface {
	Apply(ctx context.Context, actor Actor, in ApplyInput) (*model.Inscription, error)
	List(ctx context.Context, actor Actor, filter repository.InscriptionFilter) ([]model.Inscription, error)
	Get(ctx context.Context, actor Actor, id uint) (*model.Inscription, error)
	// Review moves a PENDING inscription to VALIDATED or REJECTED.
	Review(ctx context.Context, id uint, status model.InscriptionStatus, reason string) (*model.Inscription, error)
	Delete(ctx context.Context, id uint) error
}

type inscriptionService struct {
	inscriptions repository.InscriptionRepository
	filieres     repository.FiliereRepository
	users        repository.UserRepository
	cache        *cache.Client
}

// NewInscriptionService wires the inscription repositories.
func NewInscriptionService(
	inscriptions repository.InscriptionRepository,
	filieres repository.FiliereRepository,
	users repository.UserRepository,
	cache *cache.Client,
) InscriptionService {
	return &inscriptionService{
		inscriptions: inscriptions,
		filieres:     filieres,
		users:        users,
		cache:        cache,
	}
}

func (s *inscriptionService) Apply(ctx context.Context, actor Actor, in ApplyInput) (*model.Inscription, error) {
	studentID := actor.UserID
	switch actor.Role {
	case model.RoleStudent:
	case model.RoleAdmin:
		if in.StudentID == 0 {
			return nil, fmt.Errorf("%w: student_id is required", apperrors.ErrInvalidReference)
		}
		studentID = in.StudentID
	case model.RoleTeacher, model.RoleDirection:
		return nil, apperrors.ErrForbidden
	default:
		return nil, apperrors.ErrForbidden
	}

	year := strings.TrimSpace(in.AcademicYear)
	if !model.ValidAcademicYear(year) {
		return nil, apperrors.ErrInvalidAcademicYear
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d does not exist", apperrors.ErrInvalidReference, studentID)
		}
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, fmt.Errorf("%w: user %d is not a student", apperrors.ErrInvalidReference, studentID)
	}
	if _, err := s.filieres.FindByID(ctx, in.FiliereID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: filiere %d does not exist", apperrors.ErrInvalidReference, in.FiliereID)
		}
		return nil, err
	}

	ins := &model.Inscription{
		StudentID:    studentID,
		FiliereID:    in.FiliereID,
		AcademicYear: year,
		Status:       model.InscriptionPending,
	}
	if err := s.inscriptions.Create(ctx, ins); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.ErrAlreadyEnrolled
		}
		return nil, err
	}
	s.invalidateStats(ctx)
	return s.inscriptions.FindByID(ctx, ins.ID)
}

func (s *inscriptionService) List(ctx context.Context, actor Actor, filter repository.InscriptionFilter) ([]model.Inscription, error) {
	switch actor.Role {
	case model.RoleStudent:
		filter.StudentID = &actor.UserID
	case model.RoleAdmin, model.RoleDirection:
	case model.RoleTeacher:
		return nil, apperrors.ErrForbidden
	default:
		return nil, apperrors.ErrForbidden
	}
	return s.inscriptions.List(ctx, filter)
}

func (s *inscriptionService) Get(ctx context.Context, actor Actor, id uint) (*model.Inscription, error) {
	ins, err := s.inscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case model.RoleAdmin, model.RoleDirection:
		return ins, nil
	case model.RoleStudent:
		if ins.StudentID == actor.UserID {
			return ins, nil
		}
		// other students' inscriptions are reported as missing
		return nil, apperrors.ErrNotFound
	case model.RoleTeacher:
		return nil, apperrors.ErrForbidden
	default:
		return nil, apperrors.ErrForbidden
	}
}

func (s *inscriptionService) Review(ctx context.Context, id uint, status model.InscriptionStatus, reason string) (*model.Inscription, error) {
	reason = strings.TrimSpace(reason)
	switch status {
	case model.InscriptionValidated:
		reason = ""
	case model.InscriptionRejected:
		if reason == "" {
			return nil, apperrors.ErrRejectionReasonRequired
		}
	case model.InscriptionPending:
		return nil, apperrors.ErrInvalidStatus
	default:
		return nil, apperrors.ErrInvalidStatus
	}

	ins, err := s.inscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ins.Status != model.InscriptionPending {
		return nil, fmt.Errorf("%w: inscription is already %s", apperrors.ErrInvalidStatus, ins.Status)
	}

	ins.Status = status
	ins.RejectionReason = reason
	if err := s.inscriptions.Update(ctx, ins); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return ins, nil
}

func (s *inscriptionService) Delete(ctx context.Context, id uint) error {
	if err := s.inscriptions.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateStats(ctx)
	return nil
}

func (s *inscriptionService) invalidateStats(ctx context.Context) {
	_ = s.cache.Delete(ctx, dashboardCacheKey)
}
