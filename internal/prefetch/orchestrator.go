// Package prefetch warms the weather cache for favorited locations so the
// favorites panel renders with data instead of spinners.
package prefetch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/location"
	"github.com/skycast/skycast/internal/weather"
)

// DefaultPacing is the fixed delay between successive prefetch fetches.
// A simple fixed-interval throttle, not adaptive backoff.
const DefaultPacing = 100 * time.Millisecond

// Config holds configuration for the orchestrator.
type Config struct {
	// Weather is the load service whose cache gets warmed.
	Weather *weather.Service

	// Pacing is the delay between successive fetches. Default: 100ms.
	Pacing time.Duration

	// Logger for orchestrator operations.
	Logger zerolog.Logger
}

// Orchestrator populates the weather cache for favorites, strictly
// sequentially, best effort. Fetch failures are swallowed: this is a
// warming pass, not guaranteed delivery, so no error surfaces and no
// retry is scheduled.
type Orchestrator struct {
	weather *weather.Service
	pacing  time.Duration
	logger  zerolog.Logger
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	pacing := cfg.Pacing
	if pacing == 0 {
		pacing = DefaultPacing
	}
	return &Orchestrator{
		weather: cfg.Weather,
		pacing:  pacing,
		logger:  cfg.Logger,
	}
}

// WarmFavorites walks favorites in list order, fetching forecasts for
// every location without a live cache entry. Warm entries are skipped
// with no network call. Each fetch completes, pacing delay included,
// before the next begins, so cache writes for the same key never race
// within a single warming pass.
func (o *Orchestrator) WarmFavorites(ctx context.Context, favorites []location.Location) {
	warmed, skipped, failed := 0, 0, 0

	for _, fav := range favorites {
		if ctx.Err() != nil {
			break
		}

		if o.weather.Cache().HasFreshForecast(fav.ID) {
			skipped++
			continue
		}

		if _, err := o.weather.Load(ctx, fav, weather.LoadOptions{}); err != nil {
			failed++
			o.logger.Debug().Err(err).
				Str("location_id", fav.ID).
				Msg("favorite prefetch failed")
		} else {
			warmed++
		}

		select {
		case <-time.After(o.pacing):
		case <-ctx.Done():
		}
	}

	o.logger.Debug().
		Int("warmed", warmed).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("favorites warming pass completed")
}

// WarmOne optimistically prefetches a single just-added favorite. Callers
// run it in its own goroutine; the addition never waits on it.
func (o *Orchestrator) WarmOne(ctx context.Context, fav location.Location) {
	if o.weather.Cache().HasFreshForecast(fav.ID) {
		return
	}
	if _, err := o.weather.Load(ctx, fav, weather.LoadOptions{}); err != nil {
		o.logger.Debug().Err(err).
			Str("location_id", fav.ID).
			Msg("favorite prefetch failed")
	}
}
