package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

// PostgresVenueRepository implements VenueRepository using PostgreSQL with pgxpool
type PostgresVenueRepository struct {
	pool *pgxpool.Pool
}

var _ VenueRepository = (*PostgresVenueRepository)(nil)

// NewPostgresVenueRepository creates a new PostgresVenueRepository
func NewPostgresVenueRepository(pool *pgxpool.Pool) *PostgresVenueRepository {
	return &PostgresVenueRepository{pool: pool}
}

// GetByID retrieves a venue by its ID
func (r *PostgresVenueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.venue.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", id))

	query := `
		SELECT
			id, owner_id, name, price_per_hour,
			opening_time, closing_time, latitude, longitude,
			average_rating, number_of_reviews, created_at, updated_at
		FROM venues
		WHERE id = $1
	`

	venue := &domain.Venue{}
	var (
		openingTime *string
		closingTime *string
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&venue.ID,
		&venue.OwnerID,
		&venue.Name,
		&venue.PricePerHour,
		&openingTime,
		&closingTime,
		&venue.Latitude,
		&venue.Longitude,
		&venue.AverageRating,
		&venue.NumberOfReviews,
		&venue.CreatedAt,
		&venue.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrVenueNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	if openingTime != nil {
		venue.OpeningTime = *openingTime
	}
	if closingTime != nil {
		venue.ClosingTime = *closingTime
	}

	span.SetStatus(codes.Ok, "")
	return venue, nil
}

// UpdateRating overwrites the venue's rating aggregates
func (r *PostgresVenueRepository) UpdateRating(ctx context.Context, venueID string, averageRating float64, numberOfReviews int) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.venue.update_rating")
	defer span.End()

	span.SetAttributes(
		attribute.String("venue_id", venueID),
		attribute.Float64("average_rating", averageRating),
		attribute.Int("number_of_reviews", numberOfReviews),
	)

	query := `
		UPDATE venues
		SET average_rating = $2, number_of_reviews = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, venueID, averageRating, numberOfReviews)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update venue rating: %w", err)
	}

	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrVenueNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
