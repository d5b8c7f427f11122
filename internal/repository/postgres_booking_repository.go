package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

// PostgreSQL error codes for constraint violations on slot claims
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL
// with pgxpool. The partial unique index on (venue_id, start_time) and the
// window exclusion constraint over confirmed bookings are the authoritative
// slot conflict signals; inserts racing for the same slot, or overlapping a
// confirmed window, surface here as domain.ErrSlotTaken.
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

var _ BookingRepository = (*PostgresBookingRepository)(nil)

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const insertBookingQuery = `
	INSERT INTO bookings (
		id, venue_id, user_id, start_time, end_time,
		price, status, payment_ref, has_been_reviewed, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10, $11
	)
`

const selectBookingColumns = `
	id, venue_id, user_id, start_time, end_time,
	price, status, payment_ref, has_been_reviewed, created_at, updated_at
`

// Create inserts a new booking record
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("venue_id", booking.VenueID),
		attribute.String("user_id", booking.UserID),
	)

	_, err := r.pool.Exec(ctx, insertBookingQuery, bookingInsertArgs(booking)...)
	if err != nil {
		if isSlotConflict(err) {
			span.SetStatus(codes.Error, "slot taken")
			return domain.ErrSlotTaken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// CreateBatch inserts all bookings inside one transaction so a conflict on
// any slot leaves none of them behind.
func (r *PostgresBookingRepository) CreateBatch(ctx context.Context, bookings []*domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create_batch")
	defer span.End()

	span.SetAttributes(attribute.Int("booking_count", len(bookings)))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, booking := range bookings {
		if _, err := tx.Exec(ctx, insertBookingQuery, bookingInsertArgs(booking)...); err != nil {
			if isSlotConflict(err) {
				span.SetStatus(codes.Error, "slot taken")
				return domain.ErrSlotTaken
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to create booking %s: %w", booking.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if isSlotConflict(err) {
			span.SetStatus(codes.Error, "slot taken")
			return domain.ErrSlotTaken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit booking batch: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `SELECT ` + selectBookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// GetByPaymentRef retrieves the booking materialized for a gateway payment.
// Absence is not an error here; settlement uses it as the idempotency probe.
func (r *PostgresBookingRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_payment_ref")
	defer span.End()

	span.SetAttributes(attribute.String("payment_ref", paymentRef))

	query := `SELECT ` + selectBookingColumns + ` FROM bookings WHERE payment_ref = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, paymentRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "")
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking by payment ref: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// ListByUser retrieves a user's bookings, newest first
func (r *PostgresBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	query := `SELECT ` + selectBookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY start_time DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// ListConfirmedStarts returns start times of confirmed bookings within [from, to)
func (r *PostgresBookingRepository) ListConfirmedStarts(ctx context.Context, venueID string, from, to time.Time) ([]time.Time, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_confirmed_starts")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", venueID))

	query := `
		SELECT start_time
		FROM bookings
		WHERE venue_id = $1
		  AND status = $2
		  AND start_time >= $3
		  AND start_time < $4
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, venueID, domain.BookingStatusConfirmed.String(), from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list confirmed starts: %w", err)
	}
	defer rows.Close()

	var starts []time.Time
	for rows.Next() {
		var start time.Time
		if err := rows.Scan(&start); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan start time: %w", err)
		}
		starts = append(starts, start.UTC())
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate start times: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return starts, nil
}

// AnyConfirmedOverlap reports whether any confirmed booking overlaps [start, end)
func (r *PostgresBookingRepository) AnyConfirmedOverlap(ctx context.Context, venueID string, start, end time.Time) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.any_confirmed_overlap")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", venueID))

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM bookings
			WHERE venue_id = $1
			  AND status = $2
			  AND start_time < $4
			  AND end_time > $3
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, venueID, domain.BookingStatusConfirmed.String(), start, end).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check overlap: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

func bookingInsertArgs(b *domain.Booking) []interface{} {
	return []interface{}{
		b.ID,
		b.VenueID,
		b.UserID,
		b.StartTime,
		b.EndTime,
		b.Price,
		b.Status.String(),
		nullString(b.PaymentRef),
		b.HasBeenReviewed,
		b.CreatedAt,
		b.UpdatedAt,
	}
}

// scanBooking scans a booking row from either QueryRow or Rows
func scanBooking(row pgx.Row) (*domain.Booking, error) {
	booking := &domain.Booking{}
	var (
		status     string
		paymentRef *string
	)

	err := row.Scan(
		&booking.ID,
		&booking.VenueID,
		&booking.UserID,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Price,
		&status,
		&paymentRef,
		&booking.HasBeenReviewed,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatus(status)
	booking.StartTime = booking.StartTime.UTC()
	booking.EndTime = booking.EndTime.UTC()
	if paymentRef != nil {
		booking.PaymentRef = *paymentRef
	}

	return booking, nil
}

// isSlotConflict reports whether the error is a constraint violation on a
// confirmed slot claim: a unique violation on the per-start index, or an
// exclusion violation on the overlapping-window constraint
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation || pgErr.Code == pgExclusionViolation
}

// nullString converts an empty string to nil for nullable columns
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
