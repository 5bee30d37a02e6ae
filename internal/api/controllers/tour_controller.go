package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"wander/internal/models/db_models"
	"wander/internal/models/request_models"
	"wander/internal/models/response_models"
	"wander/internal/services"
	"wander/pkg/utils"
)

type TourController struct {
	tourService services.TourServiceInterface
}

func NewTourController(tourService services.TourServiceInterface) *TourController {
	return &TourController{
		tourService: tourService,
	}
}

// reserved query keys; everything else becomes a column filter.
var listQueryKeys = map[string]bool{
	"sort": true, "fields": true, "page": true, "limit": true,
}

// ListTours godoc
// @Summary List tours with filtering, sorting and pagination
// @Tags Tours
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /tours [get]
func (t *TourController) ListTours(c *gin.Context) {
	var req request_models.ListToursQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query format")
		return
	}

	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if listQueryKeys[key] || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}

	query := utils.ListQuery{
		Filters: filters,
		Sort:    req.Sort,
		Page:    req.Page,
		Limit:   req.Limit,
	}
	if req.Fields != "" {
		query.Fields = strings.Split(req.Fields, ",")
	}

	tours, err := t.tourService.ListTours(context.Background(), query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	responses := make([]response_models.TourResponse, 0, len(tours))
	for i := range tours {
		responses = append(responses, toTourResponse(&tours[i]))
	}

	utils.RespondSuccess(c, gin.H{"results": len(responses), "tours": responses}, "")
}

// TopCheapTours godoc
// @Summary The five best-rated cheap tours
// @Tags Tours
// @Produce json
// @Router /tours/top-5-cheap [get]
func (t *TourController) TopCheapTours(c *gin.Context) {
	query := utils.ListQuery{
		Sort:   "-ratings_average,price",
		Fields: []string{"id", "name", "price", "ratings_average", "summary", "difficulty"},
		Limit:  5,
	}

	tours, err := t.tourService.ListTours(context.Background(), query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	responses := make([]response_models.TourResponse, 0, len(tours))
	for i := range tours {
		responses = append(responses, toTourResponse(&tours[i]))
	}

	utils.RespondSuccess(c, gin.H{"results": len(responses), "tours": responses}, "")
}

// TourStats godoc
// @Summary Aggregated tour statistics per difficulty
// @Tags Tours
// @Produce json
// @Router /tours/stats [get]
func (t *TourController) TourStats(c *gin.Context) {
	stats, err := t.tourService.GetTourStats(context.Background())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"stats": stats}, "")
}

// MonthlyPlan godoc
// @Summary Tour starts per month for a year
// @Tags Tours
// @Produce json
// @Router /tours/monthly-plan/{year} [get]
func (t *TourController) MonthlyPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid year")
		return
	}

	plan, err := t.tourService.GetMonthlyPlan(context.Background(), year)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"year": year, "plan": plan}, "")
}

// GetTourById godoc
// @Summary Get a single tour
// @Tags Tours
// @Produce json
// @Router /tours/{id} [get]
func (t *TourController) GetTourById(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid tour id")
		return
	}

	tour, err := t.tourService.GetTourById(context.Background(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, toTourResponse(tour), "")
}

func toTourResponse(tour *db_models.Tour) response_models.TourResponse {
	return response_models.TourResponse{
		ID:              tour.ID.String(),
		Name:            tour.Name,
		Duration:        tour.Duration,
		MaxGroupSize:    tour.MaxGroupSize,
		Difficulty:      tour.Difficulty,
		RatingsAverage:  tour.RatingsAverage,
		RatingsQuantity: tour.RatingsQuantity,
		Price:           tour.Price,
		Summary:         tour.Summary,
		ImageCover:      tour.ImageCover,
		Images:          tour.Images,
		StartDates:      tour.StartDates,
	}
}
