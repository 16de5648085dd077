// Package worker
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pricealert/packages/config"
	"pricealert/packages/domain"
	"pricealert/packages/metrics"
)

type Store interface {
	LockDueTrackers(ctx context.Context, olderThan time.Duration, limit int32) ([]domain.Tracker, error)
	ApplyPriceUpdates(ctx context.Context, updates []domain.PriceUpdate) error
}

type Extractor interface {
	Run(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error)
}

type Worker struct {
	cfg       config.Config
	store     Store
	extractor Extractor
}

func New(cfg config.Config, store Store, extractor Extractor) *Worker {
	return &Worker{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
	}
}

// ProcessBatch refreshes one batch of due trackers and returns how many were
// updated. Failed trackers are left for the next cycle.
func (w *Worker) ProcessBatch(ctx context.Context) int {
	trackers, err := w.store.LockDueTrackers(ctx, w.cfg.RecheckAfter, int32(w.cfg.BatchSize))
	if err != nil {
		slog.Error("Failed to lock trackers", "error", err)
		return 0
	}
	if len(trackers) == 0 {
		return 0
	}

	slog.Info("Locked and dispatched trackers", "count", len(trackers))

	var (
		mu      sync.Mutex
		updates []domain.PriceUpdate
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.MaxWorkers)

	for _, tracker := range trackers {
		g.Go(func() error {
			update, ok := w.refresh(gCtx, tracker)
			if ok {
				mu.Lock()
				updates = append(updates, update)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := w.store.ApplyPriceUpdates(ctx, updates); err != nil {
		slog.Error("Failed to apply price updates", "count", len(updates), "error", err)
		return 0
	}
	slog.Info("Finished processing batch", "locked", len(trackers), "updated", len(updates))
	return len(updates)
}

func (w *Worker) refresh(ctx context.Context, t domain.Tracker) (domain.PriceUpdate, bool) {
	res, err := w.extractor.Run(ctx, domain.ExtractionRequest{URL: t.URL})
	if err != nil {
		slog.Warn("Tracker refresh failed", "tracker_id", t.ID, "url", t.URL, "status", domain.StatusCode(err), "error", err)
		return domain.PriceUpdate{}, false
	}

	if res.Price <= t.TargetPrice {
		metrics.TrackerTargetHits.Inc()
		slog.Info("target price reached",
			"tracker_id", t.ID,
			"user_id", t.UserID,
			"url", t.URL,
			"price", res.Price,
			"target_price", t.TargetPrice,
			"currency", res.Currency,
		)
	}

	return domain.PriceUpdate{
		TrackerID:      t.ID,
		Price:          res.Price,
		ProductName:    res.ProductName,
		Currency:       res.Currency,
		CurrencySymbol: res.CurrencySymbol,
	}, true
}
