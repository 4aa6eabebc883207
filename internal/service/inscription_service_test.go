package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "academics/internal/errors"
	"academics/internal/model"
	"academics/internal/repository"
	"academics/internal/testutil"
)

func TestInscriptionService_Apply(t *testing.T) {
	f := newFixture(t)
	student := testutil.CreateUser(t, f.db, "s@example.com", "s", model.RoleStudent, "pw123")
	admin := testutil.CreateUser(t, f.db, "a@example.com", "a", model.RoleAdmin, "pw123")
	teacher := testutil.CreateUser(t, f.db, "t@example.com", "t", model.RoleTeacher, "pw123")
	cat := testutil.CreateCatalogue(t, f.db, "INF", nil)
	svc := NewInscriptionService(f.inscriptions, f.filieres, f.users, nil)
	ctx := context.Background()

	t.Run("student applies for self", func(t *testing.T) {
		ins, err := svc.Apply(ctx, Actor{UserID: student.ID, Role: model.RoleStudent},
			ApplyInput{StudentID: admin.ID, FiliereID: cat.Filiere.ID, AcademicYear: "2024-2025"})
		require.NoError(t, err)
		assert.Equal(t, student.ID, ins.StudentID)
		assert.Equal(t, model.InscriptionPending, ins.Status)
		require.NotNil(t, ins.Filiere)
		assert.Equal(t, "INF-F", ins.Filiere.Code)
	})

	t.Run("second application for the same year conflicts", func(t *testing.T) {
		_, err := svc.Apply(ctx, Actor{UserID: student.ID, Role: model.RoleStudent},
			ApplyInput{FiliereID: cat.Filiere.ID, AcademicYear: "2024-2025"})
		assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)
	})

	t.Run("admin applies on behalf of a student", func(t *testing.T) {
		ins, err := svc.Apply(ctx, Actor{UserID: admin.ID, Role: model.RoleAdmin},
			ApplyInput{StudentID: student.ID, FiliereID: cat.Filiere.ID, AcademicYear: "2025-2026"})
		require.NoError(t, err)
		assert.Equal(t, student.ID, ins.StudentID)
	})

	t.Run("admin cannot enroll a teacher", func(t *testing.T) {
		_, err := svc.Apply(ctx, Actor{UserID: admin.ID, Role: model.RoleAdmin},
			ApplyInput{StudentID: teacher.ID, FiliereID: cat.Filiere.ID, AcademicYear: "2025-2026"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidReference)
	})

	t.Run("teacher may not apply", func(t *testing.T) {
		_, err := svc.Apply(ctx, Actor{UserID: teacher.ID, Role: model.RoleTeacher},
			ApplyInput{FiliereID: cat.Filiere.ID, AcademicYear: "2024-2025"})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("malformed year", func(t *testing.T) {
		_, err := svc.Apply(ctx, Actor{UserID: student.ID, Role: model.RoleStudent},
			ApplyInput{FiliereID: cat.Filiere.ID, AcademicYear: "2024-2026"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidAcademicYear)
	})

	t.Run("unknown filiere", func(t *testing.T) {
		_, err := svc.Apply(ctx, Actor{UserID: student.ID, Role: model.RoleStudent},
			ApplyInput{FiliereID: 9999, AcademicYear: "2026-2027"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidReference)
	})
}

func TestInscriptionService_ListScopesStudents(t *testing.T) {
	f := newFixture(t)
	s1 := testutil.CreateUser(t, f.db, "s1@example.com", "s1", model.RoleStudent, "pw123")
	s2 := testutil.CreateUser(t, f.db, "s2@example.com", "s2", model.RoleStudent, "pw123")
	cat := testutil.CreateCatalogue(t, f.db, "INF", nil)
	testutil.Enroll(t, f.db, s1.ID, cat.Filiere.ID, "2024-2025", model.InscriptionPending)
	other := testutil.Enroll(t, f.db, s2.ID, cat.Filiere.ID, "2024-2025", model.InscriptionValidated)
	svc := NewInscriptionService(f.inscriptions, f.filieres, f.users, nil)
	ctx := context.Background()

	mine, err := svc.List(ctx, Actor{UserID: s1.ID, Role: model.RoleStudent}, repository.InscriptionFilter{StudentID: &s2.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, s1.ID, mine[0].StudentID)

	all, err := svc.List(ctx, Actor{Role: model.RoleDirection}, repository.InscriptionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	validated := model.InscriptionValidated
	only, err := svc.List(ctx, Actor{Role: model.RoleAdmin}, repository.InscriptionFilter{Status: &validated})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, other.ID, only[0].ID)

	_, err = svc.List(ctx, Actor{Role: model.RoleTeacher}, repository.InscriptionFilter{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.Get(ctx, Actor{UserID: s1.ID, Role: model.RoleStudent}, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInscriptionService_Review(t *testing.T) {
	f := newFixture(t)
	student := testutil.CreateUser(t, f.db, "s@example.com", "s", model.RoleStudent, "pw123")
	cat := testutil.CreateCatalogue(t, f.db, "INF", nil)
	svc := NewInscriptionService(f.inscriptions, f.filieres, f.users, nil)
	ctx := context.Background()

	pending := testutil.Enroll(t, f.db, student.ID, cat.Filiere.ID, "2024-2025", model.InscriptionPending)

	_, err := svc.Review(ctx, pending.ID, model.InscriptionRejected, "   ")
	assert.ErrorIs(t, err, apperrors.ErrRejectionReasonRequired)

	_, err = svc.Review(ctx, pending.ID, model.InscriptionPending, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = svc.Review(ctx, pending.ID, "APPROVED", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	ins, err := svc.Review(ctx, pending.ID, model.InscriptionRejected, "incomplete file")
	require.NoError(t, err)
	assert.Equal(t, model.InscriptionRejected, ins.Status)
	assert.Equal(t, "incomplete file", ins.RejectionReason)

	_, err = svc.Review(ctx, pending.ID, model.InscriptionValidated, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = svc.Review(ctx, 9999, model.InscriptionValidated, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, pending.ID))
	assert.ErrorIs(t, svc.Delete(ctx, pending.ID), apperrors.ErrNotFound)
}
