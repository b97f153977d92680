package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tours-service/internal/api/dto"
	"github.com/spec-kit/tours-service/internal/domain"
	"github.com/spec-kit/tours-service/internal/repository"
	"github.com/spec-kit/tours-service/internal/service"
	apperrors "github.com/spec-kit/tours-service/pkg/util"
)

const (
	defaultTourPage  = 1
	defaultTourLimit = 100
	maxTourLimit     = 100
)

// ToursHandler manages tour endpoints.
type ToursHandler struct {
	tours *service.TourService
}

// NewToursHandler constructs handler.
func NewToursHandler(tourService *service.TourService) *ToursHandler {
	return &ToursHandler{tours: tourService}
}

// ListTours GET /api/v1/tours.
func (h *ToursHandler) ListTours(c *fiber.Ctx) error {
	filter, err := parseTourQuery(c)
	if err != nil {
		return err
	}
	tours, err := h.tours.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"results": len(tours),
		"data":    fiber.Map{"tours": tours},
	})
}

// GetTour GET /api/v1/tours/:id.
func (h *ToursHandler) GetTour(c *fiber.Ctx) error {
	tour, err := h.tours.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"tour": tour},
	})
}

// CreateTour POST /api/v1/tours.
func (h *ToursHandler) CreateTour(c *fiber.Ctx) error {
	var req dto.CreateTourRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(msgInvalidBody, nil)
	}
	tour, err := h.tours.Create(c.UserContext(), service.TourInput{
		Name:           req.Name,
		Duration:       req.Duration,
		MaxGroupSize:   req.MaxGroupSize,
		Difficulty:     req.Difficulty,
		RatingsAverage: req.RatingsAverage,
		Price:          req.Price,
		PriceDiscount:  req.PriceDiscount,
		Summary:        req.Summary,
		Description:    req.Description,
		ImageCover:     req.ImageCover,
		Images:         req.Images,
		StartDates:     req.StartDates,
		SecretTour:     req.SecretTour,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"tour": tour},
	})
}

// UpdateTour PATCH /api/v1/tours/:id.
func (h *ToursHandler) UpdateTour(c *fiber.Ctx) error {
	var req dto.UpdateTourRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(msgInvalidBody, nil)
	}
	tour, err := h.tours.Update(c.UserContext(), c.Params("id"), service.TourPatch{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Difficulty:    req.Difficulty,
		Price:         req.Price,
		PriceDiscount: req.PriceDiscount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		Images:        req.Images,
		StartDates:    req.StartDates,
		SecretTour:    req.SecretTour,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"tour": tour},
	})
}

// DeleteTour DELETE /api/v1/tours/:id.
func (h *ToursHandler) DeleteTour(c *fiber.Ctx) error {
	if err := h.tours.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseTourQuery(c *fiber.Ctx) (repository.TourFilter, error) {
	filter := repository.TourFilter{Sort: c.Query("sort")}

	if difficulty := strings.TrimSpace(c.Query("difficulty")); difficulty != "" {
		d := domain.TourDifficulty(difficulty)
		filter.Difficulty = &d
	}

	var err error
	if filter.PriceGTE, err = parseFloatQuery(c, "price[gte]"); err != nil {
		return filter, err
	}
	if filter.PriceLTE, err = parseFloatQuery(c, "price[lte]"); err != nil {
		return filter, err
	}
	if filter.DurationGTE, err = parseIntQuery(c, "duration[gte]"); err != nil {
		return filter, err
	}
	if filter.DurationLTE, err = parseIntQuery(c, "duration[lte]"); err != nil {
		return filter, err
	}

	if sort := strings.TrimPrefix(filter.Sort, "-"); sort != "" {
		if _, ok := repository.TourSortFields[sort]; !ok {
			return filter, apperrors.NewValidationError("Invalid sort field: "+filter.Sort, nil)
		}
	}

	page := parseInt(c.Query("page"), defaultTourPage)
	limit := parseInt(c.Query("limit"), defaultTourLimit)
	if limit > maxTourLimit {
		limit = maxTourLimit
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	return filter, nil
}

func parseFloatQuery(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid "+key+": "+raw, nil)
	}
	return &v, nil
}

func parseIntQuery(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid "+key+": "+raw, nil)
	}
	return &v, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
