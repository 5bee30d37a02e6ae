package tour_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"wander/internal/repositories"
	"wander/internal/services"
)

var Module = fx.Provide(
	provideTourService, provideTourRepo)

func provideTourRepo(db *gorm.DB) repositories.TourRepository {
	return repositories.NewTourRepository(db)
}

func provideTourService(tourRepo repositories.TourRepository) services.TourServiceInterface {
	return services.NewTourService(tourRepo)
}
