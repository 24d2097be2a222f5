// Package pipeline drives a fetch-and-normalize cycle across one or more
// query dates and reports successes and failures side by side.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gavelak/gavel-exporter/internal/basis"
	"github.com/gavelak/gavel-exporter/internal/models"
	"github.com/gavelak/gavel-exporter/internal/normalize"
)

// Fetcher is the slice of the BASIS client the pipeline needs.
type Fetcher interface {
	Fetch(ctx context.Context, date time.Time) ([]basis.Meeting, error)
}

// DateFailure records one query date that could not be fetched. The rest of
// the range is unaffected.
type DateFailure struct {
	Date time.Time
	Err  error
}

// RecordFailure records one raw entry that was dropped during normalization.
type RecordFailure struct {
	Date time.Time
	Err  error
}

// Result bundles the merged meetings with everything that went wrong, so the
// interface layer can show partial results instead of a single opaque error.
type Result struct {
	Meetings []models.Meeting
	Failed   []DateFailure
	Dropped  []RecordFailure
}

// Runner fetches dates with bounded parallelism and normalizes the results.
type Runner struct {
	fetcher Fetcher
	workers int
	log     *slog.Logger
}

// NewRunner builds a Runner. workers <= 0 falls back to 4.
func NewRunner(f Fetcher, workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{fetcher: f, workers: workers, log: logger}
}

// Run fetches every date, drops placeholder and malformed entries, and merges
// the survivors ascending by date with source order preserved within a date.
// Completion order never influences output order. Duplicate IDs across dates
// resolve last-fetch-wins in date order.
func (r *Runner) Run(ctx context.Context, dates []time.Time) Result {
	type dateOutcome struct {
		raw []basis.Meeting
		err error
	}

	outcomes := make([]dateOutcome, len(dates))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i, date := range dates {
		wg.Add(1)
		go func(i int, date time.Time) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			raw, err := r.fetcher.Fetch(ctx, date)
			outcomes[i] = dateOutcome{raw: raw, err: err}
		}(i, date)
	}
	wg.Wait()

	// Merge strictly in date order; the goroutines above only filled slots.
	order := make([]int, len(dates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dates[order[a]].Before(dates[order[b]])
	})

	var result Result
	byID := make(map[string]int)

	for _, i := range order {
		date := dates[i]
		out := outcomes[i]
		if out.err != nil {
			r.log.Warn("date fetch failed",
				slog.String("date", date.Format("2006-01-02")),
				slog.Any("err", out.err),
			)
			result.Failed = append(result.Failed, DateFailure{Date: date, Err: out.err})
			continue
		}

		for _, raw := range out.raw {
			if normalize.ShouldSkip(raw) {
				continue
			}
			m, err := normalize.Meeting(raw)
			if err != nil {
				r.log.Warn("dropped malformed meeting",
					slog.String("date", date.Format("2006-01-02")),
					slog.Any("err", err),
				)
				result.Dropped = append(result.Dropped, RecordFailure{Date: date, Err: err})
				continue
			}

			if prev, ok := byID[m.ID]; ok {
				result.Meetings[prev] = m
				continue
			}
			byID[m.ID] = len(result.Meetings)
			result.Meetings = append(result.Meetings, m)
		}
	}

	return result
}
