package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

// TourDifficulty enumerates how demanding a tour is.
type TourDifficulty string

const (
	DifficultyEasy      TourDifficulty = "easy"
	DifficultyMedium    TourDifficulty = "medium"
	DifficultyDifficult TourDifficulty = "difficult"
)

// Tour is a bookable tour.
type Tour struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Slug            string         `json:"slug"`
	Duration        int            `json:"duration"`
	MaxGroupSize    int            `json:"maxGroupSize"`
	Difficulty      TourDifficulty `json:"difficulty"`
	RatingsAverage  float64        `json:"ratingsAverage"`
	RatingsQuantity int            `json:"ratingsQuantity"`
	Price           float64        `json:"price"`
	PriceDiscount   *float64       `json:"priceDiscount,omitempty"`
	Summary         string         `json:"summary"`
	Description     string         `json:"description"`
	ImageCover      string         `json:"imageCover"`
	Images          []string       `json:"images"`
	StartDates      []time.Time    `json:"startDates"`
	SecretTour      bool           `json:"secretTour"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Default rating values for a tour nobody has reviewed yet.
const (
	DefaultRatingsAverage = 4.5
)

// Validate enforces the tour schema.
func (t Tour) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required.Error("A tour must have a name"), validation.Length(10, 40)),
		validation.Field(&t.Duration, validation.Required.Error("A tour must have a duration"), validation.Min(1)),
		validation.Field(&t.MaxGroupSize, validation.Required.Error("A tour must have a group size"), validation.Min(1)),
		validation.Field(&t.Difficulty,
			validation.Required.Error("A tour must have a difficulty"),
			validation.In(DifficultyEasy, DifficultyMedium, DifficultyDifficult).Error("Difficulty is either: easy, medium, difficult"),
		),
		validation.Field(&t.RatingsAverage, validation.Min(1.0), validation.Max(5.0)),
		validation.Field(&t.RatingsQuantity, validation.Min(0)),
		validation.Field(&t.Price, validation.Required.Error("A tour must have a price"), validation.Min(0.01)),
		validation.Field(&t.PriceDiscount, validation.By(discountBelow(t.Price))),
		validation.Field(&t.Summary, validation.Required.Error("A tour must have a summary")),
		validation.Field(&t.ImageCover, validation.Required.Error("A tour must have a cover image")),
	)
}

func discountBelow(price float64) validation.RuleFunc {
	return func(value any) error {
		var discount float64
		switch v := value.(type) {
		case *float64:
			if v == nil {
				return nil
			}
			discount = *v
		case float64:
			discount = v
		default:
			return nil
		}
		if discount >= price {
			return errors.New("Discount price should be below regular price")
		}
		return nil
	}
}

// Slugify turns a tour name into its URL slug.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
