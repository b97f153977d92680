package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tours-service/internal/domain"
)

// ErrTourNameTaken is returned when another tour already uses the name.
var ErrTourNameTaken = errors.New("tour name already in use")

// TourFilter captures listing parameters.
type TourFilter struct {
	Difficulty    *domain.TourDifficulty
	PriceGTE      *float64
	PriceLTE      *float64
	DurationGTE   *int
	DurationLTE   *int
	IncludeSecret bool
	Sort          string
	Limit         int
	Offset        int
}

// TourSortFields maps accepted sort keys to SQL columns.
var TourSortFields = map[string]string{
	"price":          "price",
	"ratingsAverage": "ratings_average",
	"duration":       "duration",
	"createdAt":      "created_at",
	"name":           "name",
}

// TourRepository encapsulates tour persistence.
type TourRepository interface {
	Create(ctx context.Context, tour *domain.Tour) error
	Update(ctx context.Context, tour *domain.Tour) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Tour, error)
	List(ctx context.Context, filter TourFilter) ([]domain.Tour, error)
}

type tourRepository struct {
	pool *pgxpool.Pool
}

// NewTourRepository instantiates repository.
func NewTourRepository(pool *pgxpool.Pool) TourRepository {
	return &tourRepository{pool: pool}
}

const tourColumns = `id, name, slug, duration, max_group_size, difficulty, ratings_average, ratings_quantity,
               price, price_discount, summary, description, image_cover, images, start_dates, secret_tour, created_at`

func (r *tourRepository) Create(ctx context.Context, tour *domain.Tour) error {
	const query = `
        INSERT INTO tours (name, slug, duration, max_group_size, difficulty, ratings_average, ratings_quantity,
            price, price_discount, summary, description, image_cover, images, start_dates, secret_tour)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		tour.Name,
		tour.Slug,
		tour.Duration,
		tour.MaxGroupSize,
		tour.Difficulty,
		tour.RatingsAverage,
		tour.RatingsQuantity,
		tour.Price,
		tour.PriceDiscount,
		tour.Summary,
		tour.Description,
		tour.ImageCover,
		tour.Images,
		tour.StartDates,
		tour.SecretTour,
	).Scan(&tour.ID, &tour.CreatedAt)
	return mapTourWriteError(err)
}

func (r *tourRepository) Update(ctx context.Context, tour *domain.Tour) error {
	const query = `
        UPDATE tours SET name=$1, slug=$2, duration=$3, max_group_size=$4, difficulty=$5, ratings_average=$6,
            ratings_quantity=$7, price=$8, price_discount=$9, summary=$10, description=$11, image_cover=$12,
            images=$13, start_dates=$14, secret_tour=$15
        WHERE id=$16`
	cmd, err := r.pool.Exec(ctx, query,
		tour.Name,
		tour.Slug,
		tour.Duration,
		tour.MaxGroupSize,
		tour.Difficulty,
		tour.RatingsAverage,
		tour.RatingsQuantity,
		tour.Price,
		tour.PriceDiscount,
		tour.Summary,
		tour.Description,
		tour.ImageCover,
		tour.Images,
		tour.StartDates,
		tour.SecretTour,
		tour.ID,
	)
	if err != nil {
		return mapTourWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tourRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tours WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tourRepository) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE id=$1`
	var tour domain.Tour
	if err := scanTour(r.pool.QueryRow(ctx, query, id), &tour); err != nil {
		return nil, err
	}
	return &tour, nil
}

func (r *tourRepository) List(ctx context.Context, filter TourFilter) ([]domain.Tour, error) {
	query, args := buildTourListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Tour
	for rows.Next() {
		var tour domain.Tour
		if err := scanTour(rows, &tour); err != nil {
			return nil, err
		}
		result = append(result, tour)
	}
	return result, rows.Err()
}

func buildTourListQuery(filter TourFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if !filter.IncludeSecret {
		clauses = append(clauses, "secret_tour = FALSE")
	}
	if filter.Difficulty != nil {
		args = append(args, *filter.Difficulty)
		clauses = append(clauses, fmt.Sprintf("difficulty=$%d", len(args)))
	}
	if filter.PriceGTE != nil {
		args = append(args, *filter.PriceGTE)
		clauses = append(clauses, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.PriceLTE != nil {
		args = append(args, *filter.PriceLTE)
		clauses = append(clauses, fmt.Sprintf("price <= $%d", len(args)))
	}
	if filter.DurationGTE != nil {
		args = append(args, *filter.DurationGTE)
		clauses = append(clauses, fmt.Sprintf("duration >= $%d", len(args)))
	}
	if filter.DurationLTE != nil {
		args = append(args, *filter.DurationLTE)
		clauses = append(clauses, fmt.Sprintf("duration <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tours WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		tourColumns, strings.Join(clauses, " AND "), tourOrderBy(filter.Sort), limit, offset)
	return query, args
}

// tourOrderBy only emits whitelisted columns; unknown keys fall back to newest first.
func tourOrderBy(sort string) string {
	direction := "ASC"
	key := strings.TrimSpace(sort)
	if strings.HasPrefix(key, "-") {
		direction = "DESC"
		key = key[1:]
	}
	column, ok := TourSortFields[key]
	if !ok {
		return "created_at DESC, id"
	}
	return column + " " + direction + ", id"
}

func scanTour(row pgx.Row, tour *domain.Tour) error {
	return row.Scan(
		&tour.ID,
		&tour.Name,
		&tour.Slug,
		&tour.Duration,
		&tour.MaxGroupSize,
		&tour.Difficulty,
		&tour.RatingsAverage,
		&tour.RatingsQuantity,
		&tour.Price,
		&tour.PriceDiscount,
		&tour.Summary,
		&tour.Description,
		&tour.ImageCover,
		&tour.Images,
		&tour.StartDates,
		&tour.SecretTour,
		&tour.CreatedAt,
	)
}

func mapTourWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrTourNameTaken
	}
	return err
}
