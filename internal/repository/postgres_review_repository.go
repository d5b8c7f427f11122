package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

// PostgresReviewRepository implements ReviewRepository using PostgreSQL
// with pgxpool. The unique index on booking_id enforces one review per
// booking.
type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

var _ ReviewRepository = (*PostgresReviewRepository)(nil)

// NewPostgresReviewRepository creates a new PostgresReviewRepository
func NewPostgresReviewRepository(pool *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{pool: pool}
}

// Create inserts a review and flags its booking as reviewed in one
// transaction, so the flag and the review row never diverge
func (r *PostgresReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("review_id", review.ID),
		attribute.String("venue_id", review.VenueID),
		attribute.String("booking_id", review.BookingID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO reviews (
			id, venue_id, user_id, booking_id, rating, comment, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err = tx.Exec(ctx, query,
		review.ID,
		review.VenueID,
		review.UserID,
		review.BookingID,
		review.Rating,
		nullString(review.Comment),
		review.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			span.SetStatus(codes.Error, "already reviewed")
			return domain.ErrAlreadyReviewed
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create review: %w", err)
	}

	flagQuery := `UPDATE bookings SET has_been_reviewed = TRUE, updated_at = NOW() WHERE id = $1`
	if _, err := tx.Exec(ctx, flagQuery, review.BookingID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to flag booking as reviewed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit review: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a review by its ID
func (r *PostgresReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("review_id", id))

	query := `
		SELECT id, venue_id, user_id, booking_id, rating, comment, created_at
		FROM reviews
		WHERE id = $1
	`

	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrReviewNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return review, nil
}

// ListByVenue retrieves a venue's reviews, newest first
func (r *PostgresReviewRepository) ListByVenue(ctx context.Context, venueID string) ([]*domain.Review, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.list_by_venue")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", venueID))

	query := `
		SELECT id, venue_id, user_id, booking_id, rating, comment, created_at
		FROM reviews
		WHERE venue_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, venueID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return reviews, nil
}

// Delete removes a review and clears its booking's reviewed flag in one
// transaction
func (r *PostgresReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.delete")
	defer span.End()

	span.SetAttributes(attribute.String("review_id", id))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var bookingID string
	err = tx.QueryRow(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING booking_id`, id).Scan(&bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrReviewNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete review: %w", err)
	}

	flagQuery := `UPDATE bookings SET has_been_reviewed = FALSE, updated_at = NOW() WHERE id = $1`
	if _, err := tx.Exec(ctx, flagQuery, bookingID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to unflag booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit review delete: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// AggregateByVenue computes the unrounded average rating and count over
// every review the venue has
func (r *PostgresReviewRepository) AggregateByVenue(ctx context.Context, venueID string) (float64, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.aggregate_by_venue")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", venueID))

	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE venue_id = $1
	`

	var (
		average float64
		count   int
	)
	if err := r.pool.QueryRow(ctx, query, venueID).Scan(&average, &count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return average, count, nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	review := &domain.Review{}
	var comment *string

	err := row.Scan(
		&review.ID,
		&review.VenueID,
		&review.UserID,
		&review.BookingID,
		&review.Rating,
		&comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if comment != nil {
		review.Comment = *comment
	}

	return review, nil
}
