package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"wander/internal/models/db_models"
	"wander/internal/repositories"
	"wander/pkg/utils"
)

type TourServiceInterface interface {
	ListTours(ctx context.Context, query utils.ListQuery) ([]db_models.Tour, error)
	GetTourById(ctx context.Context, id uuid.UUID) (*db_models.Tour, error)
	GetTourStats(ctx context.Context) ([]db_models.TourStat, error)
	GetMonthlyPlan(ctx context.Context, year int) ([]db_models.MonthlyPlanEntry, error)
}

type TourService struct {
	tourRepo repositories.TourRepository
}

func NewTourService(tourRepo repositories.TourRepository) TourServiceInterface {
	return &TourService{
		tourRepo: tourRepo,
	}
}

func (t *TourService) ListTours(ctx context.Context, query utils.ListQuery) ([]db_models.Tour, error) {
	tours, err := t.tourRepo.List(ctx, query)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidPage) || errors.Is(err, utils.ErrInvalidPageSize) ||
			errors.Is(err, utils.ErrInvalidListParam) {
			return nil, err
		}
		return nil, utils.ErrDatabaseError
	}

	return tours, nil
}

func (t *TourService) GetTourStats(ctx context.Context) ([]db_models.TourStat, error) {
	stats, err := t.tourRepo.Stats(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	return stats, nil
}

func (t *TourService) GetMonthlyPlan(ctx context.Context, year int) ([]db_models.MonthlyPlanEntry, error) {
	if year < 1900 || year > 2999 {
		return nil, utils.ErrInvalidListParam
	}

	plan, err := t.tourRepo.MonthlyPlan(ctx, year)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	return plan, nil
}

func (t *TourService) GetTourById(ctx context.Context, id uuid.UUID) (*db_models.Tour, error) {
	tour, err := t.tourRepo.FindById(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if tour == nil {
		return nil, utils.ErrTourNotFound
	}

	return tour, nil
}
