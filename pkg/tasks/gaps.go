package tasks

import (
	"context"
	"time"

	"github.com/iconix/fortudo/pkg/date"
)

// now is overridable for tests
var now = time.Now

func nowMinute() int {
	current := now()
	return current.Hour()*60 + current.Minute()
}

// Gap is a derived idle interval strictly between two chronologically
// adjacent scheduled tasks. It is never persisted.
type Gap struct {
	StartTime       int    `json:"startTime"`
	EndTime         int    `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Label           string `json:"label"`
	StartClock      string `json:"startClock"`
	EndClock        string `json:"endClock"`
}

// Boundary positions relative to the scheduled day
const (
	BoundaryBefore = "before"
	BoundaryAfter  = "after"
)

// BoundaryMarker is a derived indicator of whether "now" falls before the
// first or after the last scheduled task. Recomputed every tick.
type BoundaryMarker struct {
	Position string `json:"position"`
	Visible  bool   `json:"visible"`
}

// ComputeGaps derives the free-time gaps from an ascending scheduled list.
// Exactly back-to-back tasks produce no entry: a gap's duration is always
// strictly positive. Gap existence does not depend on the clock.
func ComputeGaps(scheduled []Task) []Gap {
	var gaps []Gap
	for i := 1; i < len(scheduled); i++ {
		prev := &scheduled[i-1]
		next := &scheduled[i]

		idle := next.StartTime - prev.EndTime()
		if idle <= 0 {
			continue
		}

		gaps = append(gaps, Gap{
			StartTime:       prev.EndTime(),
			EndTime:         next.StartTime,
			DurationMinutes: idle,
			Label:           date.FormatDuration(idle) + " free",
			StartClock:      date.FormatClock12(prev.EndTime()),
			EndClock:        date.FormatClock12(next.StartTime),
		})
	}
	return gaps
}

// ComputeBoundaries derives the before/after markers for a given minute of
// day. With no scheduled tasks there are no markers.
func ComputeBoundaries(scheduled []Task, minute int) []BoundaryMarker {
	if len(scheduled) == 0 {
		return nil
	}

	first := &scheduled[0]
	last := &scheduled[len(scheduled)-1]

	return []BoundaryMarker{
		{Position: BoundaryBefore, Visible: minute < first.StartTime},
		{Position: BoundaryAfter, Visible: minute > last.EndTime()},
	}
}

// Gaps derives the current gap list from the store
func (s *Store) Gaps() []Gap {
	return ComputeGaps(s.Scheduled())
}

// Boundaries derives the current boundary markers from the store and the
// wall clock
func (s *Store) Boundaries() []BoundaryMarker {
	return ComputeBoundaries(s.Scheduled(), nowMinute())
}

// BoundaryTicker periodically re-derives boundary-marker visibility as real
// time passes. The tick reads the store's current scheduled list on every
// firing and never mutates it.
type BoundaryTicker struct {
	store    *Store
	interval time.Duration
	onTick   func([]BoundaryMarker)
	cancel   context.CancelFunc
}

// NewBoundaryTicker builds a ticker with the standard 1 second interval
func NewBoundaryTicker(store *Store, onTick func([]BoundaryMarker)) *BoundaryTicker {
	return &BoundaryTicker{
		store:    store,
		interval: time.Second,
		onTick:   onTick,
	}
}

// Start begins ticking until Stop is called or the context is done
func (t *BoundaryTicker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.onTick(t.store.Boundaries())
			}
		}
	}()
}

// Stop tears the ticker down
func (t *BoundaryTicker) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
}
