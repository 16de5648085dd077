// Package db
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricealert/packages/domain"
	"pricealert/packages/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS trackers (
	id              BIGSERIAL PRIMARY KEY,
	user_id         BIGINT NOT NULL,
	url             TEXT NOT NULL,
	product_name    TEXT NOT NULL DEFAULT '',
	current_price   DOUBLE PRECISION NOT NULL,
	target_price    DOUBLE PRECISION NOT NULL,
	currency        TEXT NOT NULL DEFAULT 'USD',
	currency_symbol TEXT NOT NULL DEFAULT '$',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	checked_at      TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS trackers_user_id_idx ON trackers (user_id);
CREATE INDEX IF NOT EXISTS trackers_checked_at_idx ON trackers (checked_at);
`

const trackerColumns = `id, user_id, url, product_name, current_price, target_price, currency, currency_symbol, created_at, checked_at`

type Storage struct {
	DB *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return &Storage{DB: pool}, nil
}

func (s *Storage) Close() {
	s.DB.Close()
}

func (s *Storage) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	return fn(tx)
}

func observe(query string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LockDueTrackers claims up to limit trackers not checked within olderThan and
// stamps checked_at so concurrent workers skip them.
func (s *Storage) LockDueTrackers(ctx context.Context, olderThan time.Duration, limit int32) ([]domain.Tracker, error) {
	defer observe("lock_due_trackers", time.Now())

	interval := pgtype.Interval{
		Microseconds: olderThan.Microseconds(),
		Valid:        true,
	}

	var trackers []domain.Tracker
	err := s.WithTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT `+trackerColumns+`
			FROM trackers
			WHERE checked_at IS NULL OR checked_at < now() - $1::interval
			ORDER BY checked_at NULLS FIRST, id
			LIMIT $2
			FOR UPDATE SKIP LOCKED`, interval, limit)
		if err != nil {
			return fmt.Errorf("failed to lock trackers: %w", err)
		}
		trackers, err = pgx.CollectRows(rows, pgx.RowToStructByName[domain.Tracker])
		if err != nil {
			return fmt.Errorf("failed to scan trackers: %w", err)
		}
		if len(trackers) == 0 {
			return nil
		}

		ids := make([]int64, len(trackers))
		for i, t := range trackers {
			ids[i] = t.ID
		}
		if _, err := tx.Exec(ctx, `UPDATE trackers SET checked_at = now() WHERE id = ANY($1)`, ids); err != nil {
			return fmt.Errorf("failed to stamp trackers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trackers, nil
}

func (s *Storage) ApplyPriceUpdates(ctx context.Context, updates []domain.PriceUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	defer observe("apply_price_updates", time.Now())

	return s.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, u := range updates {
			batch.Queue(`
				UPDATE trackers
				SET current_price = $2,
					product_name = COALESCE(NULLIF($3, ''), product_name),
					currency = $4,
					currency_symbol = $5
				WHERE id = $1`,
				u.TrackerID, u.Price, u.ProductName, u.Currency, u.CurrencySymbol)
		}

		br := tx.SendBatch(ctx, batch)
		for range updates {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("failed to update tracker price: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to close update batch: %w", err)
		}
		slog.Info("Applied price updates", "count", len(updates))
		return nil
	})
}

// CreateTracker inserts t and fills in its ID and CreatedAt.
func (s *Storage) CreateTracker(ctx context.Context, t *domain.Tracker) error {
	defer observe("create_tracker", time.Now())

	err := s.DB.QueryRow(ctx, `
		INSERT INTO trackers (user_id, url, product_name, current_price, target_price, currency, currency_symbol)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		t.UserID, t.URL, t.ProductName, t.CurrentPrice, t.TargetPrice, t.Currency, t.CurrencySymbol,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tracker: %w", err)
	}
	return nil
}

func (s *Storage) ListTrackers(ctx context.Context, userID int64) ([]domain.Tracker, error) {
	defer observe("list_trackers", time.Now())

	rows, err := s.DB.Query(ctx, `SELECT `+trackerColumns+` FROM trackers WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trackers: %w", err)
	}
	trackers, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Tracker])
	if err != nil {
		return nil, fmt.Errorf("failed to scan trackers: %w", err)
	}
	return trackers, nil
}

// UpdateTracker overwrites the price, name and currency of a tracker owned by
// t.UserID; other users' trackers are reported as not found.
func (s *Storage) UpdateTracker(ctx context.Context, t *domain.Tracker) error {
	defer observe("update_tracker", time.Now())

	tag, err := s.DB.Exec(ctx, `
		UPDATE trackers
		SET current_price = $1, product_name = $2, currency = $3, currency_symbol = $4
		WHERE id = $5 AND user_id = $6`,
		t.CurrentPrice, t.ProductName, t.Currency, t.CurrencySymbol, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("failed to update tracker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTrackerNotFound
	}
	return nil
}

// DeleteTracker removes a tracker owned by userID; other users' trackers are
// reported as not found.
func (s *Storage) DeleteTracker(ctx context.Context, id, userID int64) error {
	defer observe("delete_tracker", time.Now())

	tag, err := s.DB.Exec(ctx, `DELETE FROM trackers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTrackerNotFound
	}
	return nil
}
