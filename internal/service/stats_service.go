package service

import (
	"context"
	"math"
	"time"

	"academics/internal/cache"
	apperrors "academics/internal/errors"
	"academics/internal/model"
	"academics/internal/repository"
)

const (
	dashboardCacheKey = "stats:dashboard"
	dashboardCacheTTL = time.Minute
)

// KPI is one headline figure of the dashboard.
type KPI struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
	Icon  string `json:"icon"`
}

// Dashboard is the administration overview.
type Dashboard struct {
	KPI              []KPI                         `json:"kpi"`
	EnrollmentTrends []repository.YearCount        `json:"enrollment_trends"`
	DepartmentDist   []repository.DepartementCount `json:"department_dist"`
}

// ModulePerformance is the grade summary of one module.
type ModulePerformance struct {
	repository.ModuleGrades
	PassRate float64 `json:"pass_rate"`
}

// Performance summarises final grades across modules.
type Performance struct {
	AcademicYear  string              `json:"academic_year,omitempty"`
	Modules       []ModulePerformance `json:"modules"`
	Graded        int64               `json:"graded"`
	GlobalAverage float64             `json:"global_average"`
	PassRate      float64             `json:"pass_rate"`
}

// StatsService computes read-only aggregates.
type StatsService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	Performance(ctx context.Context, academicYear string) (*Performance, error)
}

type statsService struct {
	repo  repository.StatsRepository
	cache *cache.Client
}

// NewStatsService builds a StatsService with repository and cache.
func NewStatsService(repo repository.StatsRepository, cache *cache.Client) StatsService {
	return &statsService{repo: repo, cache: cache}
}

func (s *statsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var cached Dashboard
	if s.cache.GetJSON(ctx, dashboardCacheKey, &cached) {
		return &cached, nil
	}

	roles, err := s.repo.CountUsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	modules, err := s.repo.CountModules(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := s.repo.CountInscriptionsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	trends, err := s.repo.EnrollmentTrends(ctx)
	if err != nil {
		return nil, err
	}
	dist, err := s.repo.DepartementDistribution(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		KPI: []KPI{
			{Label: "Students", Value: roles[model.RoleStudent], Icon: "Users"},
			{Label: "Teachers", Value: roles[model.RoleTeacher], Icon: "GraduationCap"},
			{Label: "Modules", Value: modules, Icon: "BookOpen"},
			{Label: "Pending inscriptions", Value: statuses[model.InscriptionPending], Icon: "TrendingUp"},
		},
		EnrollmentTrends: trends,
		DepartmentDist:   dist,
	}
	s.cache.SetJSON(ctx, dashboardCacheKey, d, dashboardCacheTTL)
	return d, nil
}

func (s *statsService) Performance(ctx context.Context, academicYear string) (*Performance, error) {
	if academicYear != "" && !model.ValidAcademicYear(academicYear) {
		return nil, apperrors.ErrInvalidAcademicYear
	}
	rows, err := s.repo.ModulePerformance(ctx, academicYear)
	if err != nil {
		return nil, err
	}

	p := &Performance{AcademicYear: academicYear, Modules: make([]ModulePerformance, 0, len(rows))}
	var passed int64
	var weighted float64
	for _, r := range rows {
		p.Modules = append(p.Modules, ModulePerformance{ModuleGrades: r, PassRate: ratio(r.Passed, r.Graded)})
		p.Graded += r.Graded
		passed += r.Passed
		weighted += r.Average * float64(r.Graded)
	}
	if p.Graded > 0 {
		p.GlobalAverage = round2(weighted / float64(p.Graded))
	}
	p.PassRate = ratio(passed, p.Graded)
	return p, nil
}

// ratio returns part/total as a percentage rounded to two decimals.
func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) * 100 / float64(total))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
