package force

import (
	"context"
	"time"
)

// Ticker advances a layout by one step. *Simulation is the basic one;
// callers that draw or record around the step wrap it.
type Ticker interface {
	Tick() TickReport
}

// Run ticks sim every interval until ctx is done. between, when set, runs
// after each tick and before the next one, so it never overlaps a step.
func Run(ctx context.Context, sim Ticker, interval time.Duration, between func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sim.Tick()
			if between != nil {
				between()
			}
		}
	}
}
