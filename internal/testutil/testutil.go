// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"academics/internal/auth"
	"academics/internal/cache"
	"academics/internal/db"
	"academics/internal/model"
)

// NewDB returns a migrated in-memory SQLite database closed at test cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// NewCache returns a cache backed by an in-process redis server.
func NewCache(t *testing.T) *cache.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// CreateUser inserts an active user with a bcrypt-hashed password.
func CreateUser(t *testing.T, gdb *gorm.DB, email, username string, role model.Role, password string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &model.User{
		Email:        email,
		Username:     username,
		FirstName:    username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// Catalogue is a small departement → filiere → module tree.
type Catalogue struct {
	Departement *model.Departement
	Filiere     *model.Filiere
	Module      *model.Module
}

// CreateCatalogue inserts one departement, filiere and module taught by teacherID.
func CreateCatalogue(t *testing.T, gdb *gorm.DB, prefix string, teacherID *uint) Catalogue {
	t.Helper()
	d := &model.Departement{Code: prefix + "-D", Name: "Departement " + prefix}
	if err := gdb.Create(d).Error; err != nil {
		t.Fatalf("create departement: %v", err)
	}
	f := &model.Filiere{Code: prefix + "-F", Name: "Filiere " + prefix, DepartementID: d.ID}
	if err := gdb.Create(f).Error; err != nil {
		t.Fatalf("create filiere: %v", err)
	}
	m := &model.Module{Code: prefix + "-M1", Name: "Module " + prefix, Semestre: "S1", FiliereID: f.ID, EnseignantID: teacherID}
	if err := gdb.Create(m).Error; err != nil {
		t.Fatalf("create module: %v", err)
	}
	return Catalogue{Departement: d, Filiere: f, Module: m}
}

// Enroll inserts an inscription with the given status.
func Enroll(t *testing.T, gdb *gorm.DB, studentID, filiereID uint, year string, status model.InscriptionStatus) *model.Inscription {
	t.Helper()
	i := &model.Inscription{StudentID: studentID, FiliereID: filiereID, AcademicYear: year, Status: status}
	if err := gdb.Create(i).Error; err != nil {
		t.Fatalf("create inscription: %v", err)
	}
	return i
}

// Grade inserts a note computing the final grade.
func Grade(t *testing.T, gdb *gorm.DB, studentID, moduleID uint, year, controle, examen string) *model.Note {
	t.Helper()
	c := decimal.RequireFromString(controle)
	e := decimal.RequireFromString(examen)
	n := &model.Note{
		StudentID:    studentID,
		ModuleID:     moduleID,
		AcademicYear: year,
		NoteControle: c,
		NoteExamen:   e,
		NoteFinale:   model.FinalGrade(c, e),
	}
	if err := gdb.Create(n).Error; err != nil {
		t.Fatalf("create note: %v", err)
	}
	return n
}
