package dto

import (
	"time"

	"github.com/spec-kit/tours-service/internal/domain"
)

// CreateTourRequest payload.
type CreateTourRequest struct {
	Name           string                `json:"name"`
	Duration       int                   `json:"duration"`
	MaxGroupSize   int                   `json:"maxGroupSize"`
	Difficulty     domain.TourDifficulty `json:"difficulty"`
	RatingsAverage *float64              `json:"ratingsAverage"`
	Price          float64               `json:"price"`
	PriceDiscount  *float64              `json:"priceDiscount"`
	Summary        string                `json:"summary"`
	Description    string                `json:"description"`
	ImageCover     string                `json:"imageCover"`
	Images         []string              `json:"images"`
	StartDates     []time.Time           `json:"startDates"`
	SecretTour     bool                  `json:"secretTour"`
}

// UpdateTourRequest payload; absent fields stay unchanged.
type UpdateTourRequest struct {
	Name          *string                `json:"name"`
	Duration      *int                   `json:"duration"`
	MaxGroupSize  *int                   `json:"maxGroupSize"`
	Difficulty    *domain.TourDifficulty `json:"difficulty"`
	Price         *float64               `json:"price"`
	PriceDiscount *float64               `json:"priceDiscount"`
	Summary       *string                `json:"summary"`
	Description   *string                `json:"description"`
	ImageCover    *string                `json:"imageCover"`
	Images        []string               `json:"images"`
	StartDates    []time.Time            `json:"startDates"`
	SecretTour    *bool                  `json:"secretTour"`
}
