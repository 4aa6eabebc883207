package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"academics/internal/auth"
	"academics/internal/cache"
	"academics/internal/config"
	"academics/internal/db"
	apperrors "academics/internal/errors"
	"academics/internal/model"
	"academics/internal/repository"
	"academics/internal/service"
)

// Fixture is the seed file layout. Relations are expressed by code or email.
type Fixture struct {
	Users        []SeedUser        `json:"users"`
	Departements []SeedDepartement `json:"departements"`
	Filieres     []SeedFiliere     `json:"filieres"`
	Modules      []SeedModule      `json:"modules"`
}

// SeedUser is one account of the fixture.
type SeedUser struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// SeedDepartement is one departement of the fixture.
type SeedDepartement struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SeedFiliere references its departement by code.
type SeedFiliere struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Departement string `json:"departement"`
}

// SeedModule references its filiere by code and its teacher by email.
type SeedModule struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Semestre   string `json:"semestre"`
	Filiere    string `json:"filiere"`
	Enseignant string `json:"enseignant"`
}

// counts tracks created and updated rows per entity.
type counts struct {
	created, updated int
}

func main() {
	source := flag.String("file", "seed/demo.json", "fixture path or http(s) URL")
	flag.Parse()

	log.Info("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations completed")

	fixture, err := loadFixture(*source)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}
	log.Infof("Loaded %d users, %d departements, %d filieres, %d modules from %s",
		len(fixture.Users), len(fixture.Departements), len(fixture.Filieres), len(fixture.Modules), *source)

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	s := &seeder{
		users:        repository.NewUserRepository(gormDB, cfg.StoreTimeout),
		departements: repository.NewDepartementRepository(gormDB, cfg.StoreTimeout),
		filieres:     repository.NewFiliereRepository(gormDB, cfg.StoreTimeout),
		modules:      repository.NewModuleRepository(gormDB, cfg.StoreTimeout),
		cache:        cacheClient,
	}
	if err := s.run(context.Background(), fixture); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
}

// loadFixture reads a fixture from a local file or an http(s) URL.
func loadFixture(source string) (*Fixture, error) {
	var body []byte
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = fetch(source)
	} else {
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	var f Fixture
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &f, nil
}

func fetch(url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fixture URL returned status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

type seeder struct {
	users        repository.UserRepository
	departements repository.DepartementRepository
	filieres     repository.FiliereRepository
	modules      repository.ModuleRepository
	cache        *cache.Client
}

func (s *seeder) run(ctx context.Context, f *Fixture) error {
	steps := []struct {
		name string
		fn   func(context.Context, *Fixture) (counts, error)
	}{
		{"users", s.seedUsers},
		{"departements", s.seedDepartements},
		{"filieres", s.seedFilieres},
		{"modules", s.seedModules},
	}
	for _, step := range steps {
		c, err := step.fn(ctx, f)
		if err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		log.Infof("  - %s: %d created, %d updated", step.name, c.created, c.updated)
	}
	s.flushCache(ctx)
	log.Info("Seed completed successfully!")
	return nil
}

// flushCache drops cached users and the dashboard written before the seed.
func (s *seeder) flushCache(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.cache.Ping(pingCtx); err != nil {
		log.Warnf("Redis unavailable, cached users may be stale until CACHE_TTL expires: %v", err)
		return
	}
	service.FlushReadModels(ctx, s.cache)
	log.Info("Cleared cached users and dashboard")
}

// seedUsers upserts accounts by email. Passwords are always re-hashed.
func (s *seeder) seedUsers(ctx context.Context, f *Fixture) (counts, error) {
	var c counts
	for _, u := range f.Users {
		role := model.Role(u.Role)
		if !role.Valid() {
			log.Warnf("Skipping user %s with invalid role %q", u.Email, u.Role)
			continue
		}
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return c, err
		}
		email := strings.ToLower(strings.TrimSpace(u.Email))

		existing, err := s.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			existing.Username = u.Username
			existing.FirstName = u.FirstName
			existing.LastName = u.LastName
			existing.Role = role
			existing.PasswordHash = hash
			existing.IsActive = true
			if err := s.users.Update(ctx, existing); err != nil {
				return c, fmt.Errorf("error updating user %s: %w", email, err)
			}
			c.updated++
		case errors.Is(err, apperrors.ErrNotFound):
			user := &model.User{
				Email:        email,
				Username:     u.Username,
				FirstName:    u.FirstName,
				LastName:     u.LastName,
				PasswordHash: hash,
				Role:         role,
				IsActive:     true,
			}
			if err := s.users.Create(ctx, user); err != nil {
				return c, fmt.Errorf("error creating user %s: %w", email, err)
			}
			c.created++
		default:
			return c, fmt.Errorf("error checking user %s: %w", email, err)
		}
	}
	return c, nil
}

func (s *seeder) seedDepartements(ctx context.Context, f *Fixture) (counts, error) {
	var c counts
	for _, d := range f.Departements {
		code := strings.ToUpper(strings.TrimSpace(d.Code))
		existing, err := s.departements.FindByCode(ctx, code)
		switch {
		case err == nil:
			existing.Name = d.Name
			existing.Description = d.Description
			if err := s.departements.Update(ctx, existing); err != nil {
				return c, fmt.Errorf("error updating departement %s: %w", code, err)
			}
			c.updated++
		case errors.Is(err, apperrors.ErrNotFound):
			if err := s.departements.Create(ctx, &model.Departement{Code: code, Name: d.Name, Description: d.Description}); err != nil {
				return c, fmt.Errorf("error creating departement %s: %w", code, err)
			}
			c.created++
		default:
			return c, fmt.Errorf("error checking departement %s: %w", code, err)
		}
	}
	return c, nil
}

func (s *seeder) seedFilieres(ctx context.Context, f *Fixture) (counts, error) {
	var c counts
	for _, fl := range f.Filieres {
		code := strings.ToUpper(strings.TrimSpace(fl.Code))
		dep, err := s.departements.FindByCode(ctx, strings.ToUpper(fl.Departement))
		if err != nil {
			return c, fmt.Errorf("filiere %s: departement %s: %w", code, fl.Departement, err)
		}

		existing, err := s.filieres.FindByCode(ctx, code)
		switch {
		case err == nil:
			existing.Name = fl.Name
			existing.Description = fl.Description
			existing.DepartementID = dep.ID
			existing.Departement = nil
			if err := s.filieres.Update(ctx, existing); err != nil {
				return c, fmt.Errorf("error updating filiere %s: %w", code, err)
			}
			c.updated++
		case errors.Is(err, apperrors.ErrNotFound):
			created := &model.Filiere{Code: code, Name: fl.Name, Description: fl.Description, DepartementID: dep.ID}
			if err := s.filieres.Create(ctx, created); err != nil {
				return c, fmt.Errorf("error creating filiere %s: %w", code, err)
			}
			c.created++
		default:
			return c, fmt.Errorf("error checking filiere %s: %w", code, err)
		}
	}
	return c, nil
}

func (s *seeder) seedModules(ctx context.Context, f *Fixture) (counts, error) {
	var c counts
	for _, m := range f.Modules {
		code := strings.ToUpper(strings.TrimSpace(m.Code))
		fil, err := s.filieres.FindByCode(ctx, strings.ToUpper(m.Filiere))
		if err != nil {
			return c, fmt.Errorf("module %s: filiere %s: %w", code, m.Filiere, err)
		}
		var teacherID *uint
		if m.Enseignant != "" {
			teacher, err := s.users.FindByEmail(ctx, strings.ToLower(m.Enseignant))
			if err != nil {
				return c, fmt.Errorf("module %s: enseignant %s: %w", code, m.Enseignant, err)
			}
			if teacher.Role != model.RoleTeacher {
				return c, fmt.Errorf("module %s: %s is not a teacher", code, m.Enseignant)
			}
			teacherID = &teacher.ID
		}

		existing, err := s.modules.FindByCode(ctx, code)
		switch {
		case err == nil:
			existing.Name = m.Name
			existing.Semestre = strings.ToUpper(m.Semestre)
			existing.FiliereID = fil.ID
			existing.EnseignantID = teacherID
			existing.Filiere = nil
			if err := s.modules.Update(ctx, existing); err != nil {
				return c, fmt.Errorf("error updating module %s: %w", code, err)
			}
			c.updated++
		case errors.Is(err, apperrors.ErrNotFound):
			created := &model.Module{
				Code:         code,
				Name:         m.Name,
				Semestre:     strings.ToUpper(m.Semestre),
				FiliereID:    fil.ID,
				EnseignantID: teacherID,
			}
			if err := s.modules.Create(ctx, created); err != nil {
				return c, fmt.Errorf("error creating module %s: %w", code, err)
			}
			c.created++
		default:
			return c, fmt.Errorf("error checking module %s: %w", code, err)
		}
	}
	return c, nil
}
