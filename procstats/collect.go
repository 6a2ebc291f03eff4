package procstats

import (
	"context"
	"log/slog"
	"time"
)

// Pusher emits one data point per invocation.
// Params: ctx bounds one scrape.
// Returns: scrape error; inactive sources return nil.
type Pusher interface {
	Push(ctx context.Context) error
}

// Collect pushes all producers on a fixed interval until ctx cancellation.
// A failed scrape is logged and does not stop the loop.
// Params: ctx controls lifecycle; every push interval; logger scrape-error sink; pushers stat producers.
// Returns: nil on graceful stop.
func Collect(ctx context.Context, every time.Duration, logger *slog.Logger, pushers ...Pusher) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	// Warm-up push so the first interval is not empty.
	pushAll(ctx, logger, pushers)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pushAll(ctx, logger, pushers)
		}
	}
}

// pushAll runs every producer once, logging failures.
// Params: ctx bounds the scrapes; logger error sink; pushers stat producers.
// Returns: none.
func pushAll(ctx context.Context, logger *slog.Logger, pushers []Pusher) {
	for _, pusher := range pushers {
		if err := pusher.Push(ctx); err != nil {
			logger.Error("stat push failed", slog.String("error", err.Error()))
		}
	}
}
