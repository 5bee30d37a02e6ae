package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"wander/internal/models/db_models"
	"wander/pkg/utils"
)

type mockTourRepo struct {
	tours    []db_models.Tour
	stats    []db_models.TourStat
	plan     []db_models.MonthlyPlanEntry
	planYear int
	listErr  error
	findErr  error
	statsErr error
}

func (m *mockTourRepo) List(_ context.Context, _ utils.ListQuery) ([]db_models.Tour, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.tours, nil
}

func (m *mockTourRepo) Stats(_ context.Context) ([]db_models.TourStat, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

func (m *mockTourRepo) MonthlyPlan(_ context.Context, year int) ([]db_models.MonthlyPlanEntry, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	m.planYear = year
	return m.plan, nil
}

func (m *mockTourRepo) FindById(_ context.Context, id uuid.UUID) (*db_models.Tour, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := range m.tours {
		if m.tours[i].ID == id {
			return &m.tours[i], nil
		}
	}
	return nil, nil
}

func TestListTours(t *testing.T) {
	repo := &mockTourRepo{tours: []db_models.Tour{{Name: "forest"}, {Name: "sea"}}}
	service := NewTourService(repo)

	tours, err := service.ListTours(context.Background(), utils.ListQuery{})
	if err != nil {
		t.Fatalf("ListTours: %v", err)
	}
	if len(tours) != 2 {
		t.Fatalf("got %d tours, want 2", len(tours))
	}
}

func TestListToursPropagatesPagingErrors(t *testing.T) {
	repo := &mockTourRepo{listErr: utils.ErrInvalidPageSize}
	service := NewTourService(repo)

	_, err := service.ListTours(context.Background(), utils.ListQuery{Limit: 500})
	if !errors.Is(err, utils.ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}

	repo.listErr = errors.New("connection refused")
	_, err = service.ListTours(context.Background(), utils.ListQuery{})
	if !errors.Is(err, utils.ErrDatabaseError) {
		t.Fatalf("expected ErrDatabaseError, got %v", err)
	}
}

func TestGetTourStats(t *testing.T) {
	repo := &mockTourRepo{stats: []db_models.TourStat{
		{Difficulty: "easy", NumTours: 3, AvgPrice: 150},
		{Difficulty: "difficult", NumTours: 1, AvgPrice: 400},
	}}
	service := NewTourService(repo)

	stats, err := service.GetTourStats(context.Background())
	if err != nil {
		t.Fatalf("GetTourStats: %v", err)
	}
	if len(stats) != 2 || stats[0].Difficulty != "easy" {
		t.Fatalf("got %+v", stats)
	}

	repo.statsErr = errors.New("connection refused")
	_, err = service.GetTourStats(context.Background())
	if !errors.Is(err, utils.ErrDatabaseError) {
		t.Fatalf("expected ErrDatabaseError, got %v", err)
	}
}

func TestGetMonthlyPlan(t *testing.T) {
	repo := &mockTourRepo{plan: []db_models.MonthlyPlanEntry{
		{Month: 7, NumTours: 2, Tours: []string{"forest", "sea"}},
	}}
	service := NewTourService(repo)

	plan, err := service.GetMonthlyPlan(context.Background(), 2026)
	if err != nil {
		t.Fatalf("GetMonthlyPlan: %v", err)
	}
	if len(plan) != 1 || plan[0].Month != 7 {
		t.Fatalf("got %+v", plan)
	}
	if repo.planYear != 2026 {
		t.Fatalf("repo queried year %d", repo.planYear)
	}

	_, err = service.GetMonthlyPlan(context.Background(), 26)
	if !errors.Is(err, utils.ErrInvalidListParam) {
		t.Fatalf("bad year: expected ErrInvalidListParam, got %v", err)
	}
}

func TestGetTourById(t *testing.T) {
	tour := db_models.Tour{Name: "sea"}
	tour.ID = uuid.New()
	repo := &mockTourRepo{tours: []db_models.Tour{tour}}
	service := NewTourService(repo)

	got, err := service.GetTourById(context.Background(), tour.ID)
	if err != nil || got == nil {
		t.Fatalf("GetTourById: %v, %v", got, err)
	}
	if got.Name != "sea" {
		t.Fatalf("got tour %q", got.Name)
	}

	_, err = service.GetTourById(context.Background(), uuid.New())
	if !errors.Is(err, utils.ErrTourNotFound) {
		t.Fatalf("expected ErrTourNotFound, got %v", err)
	}
}
