package db_models

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Tour struct {
	BaseModel
	Name            string `gorm:"unique"`
	Duration        int
	MaxGroupSize    int
	Difficulty      string // easy | medium | difficult
	RatingsAverage  float64 `gorm:"default:4.5"`
	RatingsQuantity int
	Price           float64
	PriceDiscount   float64
	Summary         string
	Description     string
	ImageCover      string
	Images          pq.StringArray `gorm:"type:text[]"`
	StartDates      pq.StringArray `gorm:"type:text[]"`
	StartLocation   datatypes.JSON
	SecretTour      bool
}

// TourStat is one row of the per-difficulty aggregation.
type TourStat struct {
	Difficulty string
	NumTours   int
	AvgRating  float64
	AvgPrice   float64
	MinPrice   float64
	MaxPrice   float64
}

// MonthlyPlanEntry reports how many tours start in a month of a given
// year, with their names.
type MonthlyPlanEntry struct {
	Month    int
	NumTours int
	Tours    pq.StringArray `gorm:"type:text[]"`
}
