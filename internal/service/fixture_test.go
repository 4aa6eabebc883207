package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"academics/internal/model"
	"academics/internal/repository"
	"academics/internal/testutil"
)

// fixture wires every repository over one in-memory database.
type fixture struct {
	db           *gorm.DB
	users        repository.UserRepository
	departements repository.DepartementRepository
	filieres     repository.FiliereRepository
	modules      repository.ModuleRepository
	inscriptions repository.InscriptionRepository
	notes        repository.NoteRepository
	stats        repository.StatsRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	return &fixture{
		db:           gdb,
		users:        repository.NewUserRepository(gdb, 0),
		departements: repository.NewDepartementRepository(gdb, 0),
		filieres:     repository.NewFiliereRepository(gdb, 0),
		modules:      repository.NewModuleRepository(gdb, 0),
		inscriptions: repository.NewInscriptionRepository(gdb, 0),
		notes:        repository.NewNoteRepository(gdb, 0),
		stats:        repository.NewStatsRepository(gdb, 0),
	}
}

// duplicateErr returns the error a repository reports on a unique key clash.
func duplicateErr(t *testing.T) error {
	t.Helper()
	f := newFixture(t)
	ctx := context.Background()
	u := model.User{Email: "dup@example.com", Username: "dup", PasswordHash: "x", Role: model.RoleStudent, IsActive: true}
	first, second := u, u
	require.NoError(t, f.users.Create(ctx, &first))
	err := f.users.Create(ctx, &second)
	require.True(t, repository.IsDuplicate(err), "expected duplicate, got %v", err)
	return err
}
