package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/tours-service/internal/cache"
	"github.com/spec-kit/tours-service/internal/domain"
	"github.com/spec-kit/tours-service/internal/repository"
	apperrors "github.com/spec-kit/tours-service/pkg/util"
)

const (
	msgTourNotFound  = "No tour found with that ID"
	msgTourNameTaken = "Duplicate field value: name. Please use another value!"
)

// TourInput carries the fields for a new tour.
type TourInput struct {
	Name           string
	Duration       int
	MaxGroupSize   int
	Difficulty     domain.TourDifficulty
	RatingsAverage *float64
	Price          float64
	PriceDiscount  *float64
	Summary        string
	Description    string
	ImageCover     string
	Images         []string
	StartDates     []time.Time
	SecretTour     bool
}

// TourPatch carries a partial tour update; nil fields are left unchanged.
type TourPatch struct {
	Name          *string
	Duration      *int
	MaxGroupSize  *int
	Difficulty    *domain.TourDifficulty
	Price         *float64
	PriceDiscount *float64
	Summary       *string
	Description   *string
	ImageCover    *string
	Images        []string
	StartDates    []time.Time
	SecretTour    *bool
}

// TourService coordinates tour CRUD and the read cache.
type TourService struct {
	tours  repository.TourRepository
	cache  cache.TourCache
	logger *zap.Logger
}

// NewTourService builds the service.
func NewTourService(tours repository.TourRepository, tourCache cache.TourCache, logger *zap.Logger) *TourService {
	if tourCache == nil {
		tourCache = cache.NoopTourCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TourService{tours: tours, cache: tourCache, logger: logger}
}

// List returns tours matching the filter.
func (s *TourService) List(ctx context.Context, filter repository.TourFilter) ([]domain.Tour, error) {
	tours, err := s.tours.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tours, nil
}

// Get returns a tour by id, consulting the cache first.
func (s *TourService) Get(ctx context.Context, id string) (*domain.Tour, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if tour, ok := s.cache.Get(ctx, id); ok {
		return tour, nil
	}
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, mapTourError(err)
	}
	s.cache.Set(ctx, tour)
	return tour, nil
}

// Create validates and stores a new tour.
func (s *TourService) Create(ctx context.Context, in TourInput) (*domain.Tour, error) {
	tour := &domain.Tour{
		Name:           strings.TrimSpace(in.Name),
		Duration:       in.Duration,
		MaxGroupSize:   in.MaxGroupSize,
		Difficulty:     in.Difficulty,
		RatingsAverage: domain.DefaultRatingsAverage,
		Price:          in.Price,
		PriceDiscount:  in.PriceDiscount,
		Summary:        strings.TrimSpace(in.Summary),
		Description:    strings.TrimSpace(in.Description),
		ImageCover:     in.ImageCover,
		Images:         nonNilStrings(in.Images),
		StartDates:     nonNilTimes(in.StartDates),
		SecretTour:     in.SecretTour,
	}
	if in.RatingsAverage != nil {
		tour.RatingsAverage = *in.RatingsAverage
	}
	tour.Slug = domain.Slugify(tour.Name)

	if err := tour.Validate(); err != nil {
		return nil, validationError(err)
	}
	if err := s.tours.Create(ctx, tour); err != nil {
		return nil, mapTourError(err)
	}
	s.logger.Info("tour created", zap.String("tour_id", tour.ID), zap.String("slug", tour.Slug))
	return tour, nil
}

// Update applies a patch and re-validates the whole tour.
func (s *TourService) Update(ctx context.Context, id string, patch TourPatch) (*domain.Tour, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, mapTourError(err)
	}

	applyTourPatch(tour, patch)
	if err := tour.Validate(); err != nil {
		return nil, validationError(err)
	}
	if err := s.tours.Update(ctx, tour); err != nil {
		return nil, mapTourError(err)
	}
	s.cache.Invalidate(ctx, id)
	return tour, nil
}

// Delete removes a tour.
func (s *TourService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.tours.Delete(ctx, id); err != nil {
		return mapTourError(err)
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func applyTourPatch(tour *domain.Tour, patch TourPatch) {
	if patch.Name != nil {
		tour.Name = strings.TrimSpace(*patch.Name)
		tour.Slug = domain.Slugify(tour.Name)
	}
	if patch.Duration != nil {
		tour.Duration = *patch.Duration
	}
	if patch.MaxGroupSize != nil {
		tour.MaxGroupSize = *patch.MaxGroupSize
	}
	if patch.Difficulty != nil {
		tour.Difficulty = *patch.Difficulty
	}
	if patch.Price != nil {
		tour.Price = *patch.Price
	}
	if patch.PriceDiscount != nil {
		tour.PriceDiscount = patch.PriceDiscount
	}
	if patch.Summary != nil {
		tour.Summary = strings.TrimSpace(*patch.Summary)
	}
	if patch.Description != nil {
		tour.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ImageCover != nil {
		tour.ImageCover = *patch.ImageCover
	}
	if patch.Images != nil {
		tour.Images = patch.Images
	}
	if patch.StartDates != nil {
		tour.StartDates = patch.StartDates
	}
	if patch.SecretTour != nil {
		tour.SecretTour = *patch.SecretTour
	}
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid id: %s", id), nil)
	}
	return nil
}

func mapTourError(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(msgTourNotFound)
	case errors.Is(err, repository.ErrTourNameTaken):
		return apperrors.NewValidationError(msgTourNameTaken, map[string]any{"name": msgTourNameTaken})
	}
	return apperrors.NewInternalError(err)
}

// pgx encodes nil slices as NULL; the array columns are NOT NULL.
func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilTimes(in []time.Time) []time.Time {
	if in == nil {
		return []time.Time{}
	}
	return in
}
