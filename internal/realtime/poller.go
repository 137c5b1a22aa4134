package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"madmetro/internal/webwatch"
)

// Source supplies the current data of a route.
type Source interface {
	RouteCurrentData(ctx context.Context, routeID string) (*webwatch.RouteCurrentData, error)
}

// Archive records polled snapshots.
type Archive interface {
	RecordPoll(ctx context.Context, routeID string, polledAt time.Time, data *webwatch.RouteCurrentData) (string, error)
}

// Poller refreshes the current data of a set of routes on an interval and
// keeps the latest result per route in a Store.
type Poller struct {
	source   Source
	routeIDs []string
	store    *Store
	archive  Archive
	interval time.Duration
	workers  int
	logger   *slog.Logger
	now      func() time.Time

	ready     chan struct{}
	readyOnce sync.Once
}

// NewPoller creates a Poller for routeIDs. At most workers routes are
// requested at once.
func NewPoller(source Source, routeIDs []string, store *Store, interval time.Duration, workers int, logger *slog.Logger) *Poller {
	if workers < 1 {
		workers = 1
	}
	return &Poller{
		source:   source,
		routeIDs: routeIDs,
		store:    store,
		interval: interval,
		workers:  workers,
		logger:   logger,
		now:      time.Now,
		ready:    make(chan struct{}),
	}
}

// WithArchive makes the Poller record every snapshot in a.
func (p *Poller) WithArchive(a Archive) *Poller {
	p.archive = a
	return p
}

// Ready is closed once the first poll has finished.
func (p *Poller) Ready() <-chan struct{} {
	return p.ready
}

// Start begins polling. Blocks until context is cancelled.
func (p *Poller) Start(ctx context.Context) {
	// Poll immediately on start
	p.PollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.PollOnce(ctx)
		case <-ctx.Done():
			p.logger.Info("webwatch poller stopped")
			return
		}
	}
}

// PollOnce requests every route once and waits for all of them.
func (p *Poller) PollOnce(ctx context.Context) {
	start := p.now()

	wp := pool.New().WithMaxGoroutines(p.workers)
	for _, routeID := range p.routeIDs {
		wp.Go(func() {
			p.pollRoute(ctx, routeID)
		})
	}
	wp.Wait()
	p.readyOnce.Do(func() { close(p.ready) })

	p.logger.Info("webwatch poll complete",
		"routes", len(p.routeIDs),
		"vehicles", p.store.VehicleCount(),
		"duration", p.now().Sub(start).Round(time.Millisecond),
	)
}

func (p *Poller) pollRoute(ctx context.Context, routeID string) {
	data, err := p.source.RouteCurrentData(ctx, routeID)
	if err != nil {
		p.logger.Error("poll route", "route", routeID, "error", err)
		return
	}

	polledAt := p.now()
	p.store.Set(Snapshot{RouteID: routeID, PolledAt: polledAt, Data: data})

	if p.archive == nil {
		return
	}
	if _, err := p.archive.RecordPoll(ctx, routeID, polledAt, data); err != nil {
		p.logger.Error("archive poll", "route", routeID, "error", err)
	}
}
