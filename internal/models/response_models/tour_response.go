package response_models

type TourResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Duration        int      `json:"duration"`
	MaxGroupSize    int      `json:"max_group_size"`
	Difficulty      string   `json:"difficulty"`
	RatingsAverage  float64  `json:"ratings_average"`
	RatingsQuantity int      `json:"ratings_quantity"`
	Price           float64  `json:"price"`
	Summary         string   `json:"summary"`
	ImageCover      string   `json:"image_cover"`
	Images          []string `json:"images,omitempty"`
	StartDates      []string `json:"start_dates,omitempty"`
}
