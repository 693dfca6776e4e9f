// Package pacing holds a loop at a fixed cadence by sleeping only the part
// of each period the loop body did not use.
package pacing

import (
	"context"
	"time"
)

// Interval returns the period for the given rate, in whole milliseconds.
func Interval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Duration(1000/fps) * time.Millisecond
}

// Remainder returns how long to sleep after a tick that took elapsed.
// It never returns a negative duration.
func Remainder(interval, elapsed time.Duration) time.Duration {
	d := interval - elapsed
	if d < 0 {
		return 0
	}
	return d
}

// Sleep waits for d or until ctx is done. It reports false if ctx ended.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Pacer measures each tick and sleeps the remainder of its interval.
// Overruns skip the sleep instead of accumulating backlog.
type Pacer struct {
	interval time.Duration
	started  time.Time
}

// New creates a Pacer for the given interval.
func New(interval time.Duration) *Pacer {
	return &Pacer{interval: interval, started: time.Now()}
}

// Start marks the beginning of a tick.
func (p *Pacer) Start() {
	p.started = time.Now()
}

// Wait sleeps until the current tick's interval has elapsed.
func (p *Pacer) Wait(ctx context.Context) bool {
	return Sleep(ctx, Remainder(p.interval, time.Since(p.started)))
}

// Interval returns the configured tick period.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
