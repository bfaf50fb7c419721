// Package upload simulates progress for document uploads. The backend reports
// nothing until the request completes, so the percentage is a cosmetic ramp;
// whether an upload succeeded is decided by the HTTP response alone.
package upload

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// TickInterval is how often the ramp advances.
	TickInterval = 200 * time.Millisecond
	// Ceiling is the highest percentage reached before the upload resolves.
	Ceiling = 90.0
	// MaxStep bounds a single increment (exclusive).
	MaxStep = 15.0
)

// Ramp is a simulated progress percentage in [0, 100].
type Ramp struct {
	mu   sync.Mutex
	pct  float64
	done bool
	rnd  func() float64
}

// Option configures a Ramp.
type Option func(*Ramp)

// WithRand sets the source of increments. fn must return values in [0, 1).
func WithRand(fn func() float64) Option {
	return func(r *Ramp) { r.rnd = fn }
}

// NewRamp creates a ramp at 0%.
func NewRamp(opts ...Option) *Ramp {
	r := &Ramp{rnd: rand.Float64}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Step advances by a random increment and returns the new percentage.
// It never passes Ceiling; after Complete it stays at 100.
func (r *Ramp) Step() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done || r.pct >= Ceiling {
		return r.pct
	}
	r.pct += r.rnd() * MaxStep
	if r.pct > Ceiling {
		r.pct = Ceiling
	}
	return r.pct
}

// Complete snaps the ramp to 100%.
func (r *Ramp) Complete() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	r.pct = 100
	return r.pct
}

// Percent returns the current percentage.
func (r *Ramp) Percent() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pct
}

// Done reports whether Complete was called.
func (r *Ramp) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Stage labels a percentage for display.
func Stage(pct float64) string {
	switch {
	case pct < 30:
		return "Uploading files..."
	case pct < 60:
		return "Extracting text content..."
	case pct < 90:
		return "Processing and indexing..."
	default:
		return "Upload complete!"
	}
}

// Track runs work while advancing r every interval and reporting each value
// to onTick. When work returns without error the ramp completes and onTick
// sees 100; on error the ramp is left where it stopped.
func Track(ctx context.Context, r *Ramp, interval time.Duration, onTick func(float64), work func(context.Context) error) error {
	if onTick == nil {
		onTick = func(float64) {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				onTick(r.Step())
			}
		}
	}()

	err := work(ctx)
	close(stop)
	wg.Wait()

	if err != nil {
		return err
	}
	onTick(r.Complete())
	return nil
}
