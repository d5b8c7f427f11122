package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL holds the reservation engine schema. The partial unique index
// ux_bookings_confirmed_slot is the authoritative conflict signal for
// same-start claims; the exclusion constraint ex_bookings_confirmed_window
// extends it to overlapping multi-hour windows with different starts.
// ux_bookings_payment_ref deduplicates concurrent settlements of the same
// gateway payment.
const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS venues (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	price_per_hour DOUBLE PRECISION NOT NULL DEFAULT 0,
	opening_time TEXT,
	closing_time TEXT,
	latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
	average_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
	number_of_reviews INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bookings (
	id TEXT PRIMARY KEY,
	venue_id TEXT NOT NULL REFERENCES venues(id),
	user_id TEXT NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	price DOUBLE PRECISION NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'Pending',
	payment_ref TEXT,
	has_been_reviewed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT bookings_window_check CHECK (end_time > start_time),
	CONSTRAINT ex_bookings_confirmed_window EXCLUDE USING gist (
		venue_id WITH =,
		tstzrange(start_time, end_time) WITH &&
	) WHERE (status = 'Confirmed')
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_confirmed_slot
	ON bookings(venue_id, start_time)
	WHERE status = 'Confirmed';

CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_payment_ref
	ON bookings(payment_ref)
	WHERE payment_ref IS NOT NULL;

CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id, start_time DESC);
CREATE INDEX IF NOT EXISTS idx_bookings_venue_window ON bookings(venue_id, start_time, end_time);

CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	venue_id TEXT NOT NULL REFERENCES venues(id),
	user_id TEXT NOT NULL,
	booking_id TEXT NOT NULL REFERENCES bookings(id),
	rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_reviews_booking ON reviews(booking_id);
CREATE INDEX IF NOT EXISTS idx_reviews_venue ON reviews(venue_id, created_at DESC);
`

// Migrate applies the schema, creating tables and indexes when missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
