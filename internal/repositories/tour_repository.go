package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wander/internal/models/db_models"
	"wander/pkg/utils"
)

type TourRepository interface {
	List(ctx context.Context, query utils.ListQuery) ([]db_models.Tour, error)
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Tour, error)
	Stats(ctx context.Context) ([]db_models.TourStat, error)
	MonthlyPlan(ctx context.Context, year int) ([]db_models.MonthlyPlanEntry, error)
}

type tourRepository struct {
	db *gorm.DB
}

func NewTourRepository(db *gorm.DB) TourRepository {
	return &tourRepository{
		db: db,
	}
}

func (t *tourRepository) List(ctx context.Context, query utils.ListQuery) ([]db_models.Tour, error) {
	tx := t.db.WithContext(ctx).Model(&db_models.Tour{}).Where("secret_tour = ?", false)

	tx, err := utils.ApplyListQuery(tx, query)
	if err != nil {
		return nil, err
	}

	var tours []db_models.Tour
	if err := tx.Find(&tours).Error; err != nil {
		return nil, err
	}

	return tours, nil
}

// Stats aggregates public tours per difficulty.
func (t *tourRepository) Stats(ctx context.Context) ([]db_models.TourStat, error) {
	var stats []db_models.TourStat
	err := t.db.WithContext(ctx).
		Model(&db_models.Tour{}).
		Select("difficulty, COUNT(*) AS num_tours, AVG(ratings_average) AS avg_rating, " +
			"AVG(price) AS avg_price, MIN(price) AS min_price, MAX(price) AS max_price").
		Where("secret_tour = ?", false).
		Group("difficulty").
		Order("avg_price").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// MonthlyPlan unnests the start-date arrays of public tours and buckets
// them per month of the given year, busiest months first.
func (t *tourRepository) MonthlyPlan(ctx context.Context, year int) ([]db_models.MonthlyPlanEntry, error) {
	var entries []db_models.MonthlyPlanEntry
	err := t.db.WithContext(ctx).Raw(`
		SELECT EXTRACT(MONTH FROM d.start::timestamp)::int AS month,
		       COUNT(*) AS num_tours,
		       ARRAY_AGG(t.name) AS tours
		FROM tours t, unnest(t.start_dates) AS d(start)
		WHERE EXTRACT(YEAR FROM d.start::timestamp) = ?
		  AND t.secret_tour = false
		  AND t.deleted_at IS NULL
		GROUP BY 1
		ORDER BY num_tours DESC, month`, year).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (t *tourRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Tour, error) {
	var tour db_models.Tour
	err := t.db.WithContext(ctx).First(&tour, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &tour, nil
}
