package reconcile

import (
	"context"
	"errors"
	"sort"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/g37/meeting-manager/internal/domain/entities"
	"github.com/g37/meeting-manager/internal/infrastructure/external/automation"
	"github.com/g37/meeting-manager/internal/infrastructure/metrics"
	usecaseErrors "github.com/g37/meeting-manager/internal/usecase/errors"
	"github.com/g37/meeting-manager/pkg/eventbus"
)

// SourceState summarizes one source's contribution to a load.
type SourceState string

const (
	SourceSuccess  SourceState = "success"
	SourceDegraded SourceState = "degraded"
	SourceFailed   SourceState = "failed"
)

// SourceSummary is the per-source status callers surface alongside the
// merged list, so partial failures do not hide available data.
type SourceSummary struct {
	Source  entities.MeetingSource `json:"source"`
	State   SourceState            `json:"state"`
	Records int                    `json:"records"`
	Dropped int                    `json:"dropped"`
	Error   string                 `json:"error,omitempty"`
}

// LoadResult is a reconciled meeting list plus its provenance summary.
type LoadResult struct {
	Meetings []entities.Meeting `json:"meetings"`
	Sources  []SourceSummary    `json:"sources"`
}

// Options tunes engine behavior.
type Options struct {
	// FetchTimeout bounds each source fetch so the join never hangs on one
	// slow source.
	FetchTimeout time.Duration
	// RetryDegraded grants each failing source one backoff retry before it
	// is declared failed for this load.
	RetryDegraded bool
}

// Engine merges meetings from all configured sources into one canonical,
// deterministically ordered view.
type Engine struct {
	sources []Source
	opts    Options
	logger  *zap.Logger
	bus     *eventbus.Bus
	metrics *metrics.Metrics
}

// NewEngine creates a reconciliation engine. bus and m may be nil.
func NewEngine(sources []Source, opts Options, logger *zap.Logger, bus *eventbus.Bus, m *metrics.Metrics) *Engine {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	return &Engine{
		sources: sources,
		opts:    opts,
		logger:  logger,
		bus:     bus,
		metrics: m,
	}
}

type sourceResult struct {
	summary  SourceSummary
	meetings []entities.Meeting
}

// Load fans out to every source concurrently, merges what succeeded, and
// returns the per-source summary. Only when every source fails does the call
// itself fail; the summaries are still returned so callers can explain what
// happened. Caller cancellation propagates to in-flight fetches via ctx.
func (e *Engine) Load(ctx context.Context) (*LoadResult, error) {
	results := make(chan sourceResult, len(e.sources))

	for _, src := range e.sources {
		go func(src Source) {
			results <- e.loadSource(ctx, src)
		}(src)
	}

	merged := make(map[string]entities.Meeting)
	summaries := make([]SourceSummary, 0, len(e.sources))
	failed := 0
	degraded := make([]string, 0)

	for range e.sources {
		res := <-results
		summaries = append(summaries, res.summary)
		switch res.summary.State {
		case SourceFailed:
			failed++
			degraded = append(degraded, string(res.summary.Source))
		case SourceDegraded:
			degraded = append(degraded, string(res.summary.Source))
		}
		for _, m := range res.meetings {
			// One canonical meeting per (source, source-local id) pair;
			// a later duplicate from the same source is discarded.
			if _, exists := merged[m.ID]; !exists {
				merged[m.ID] = m
			}
		}
	}

	// Deterministic order regardless of source completion order.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Source < summaries[j].Source
	})

	meetings := make([]entities.Meeting, 0, len(merged))
	for _, m := range merged {
		meetings = append(meetings, m)
	}
	sortMeetings(meetings)

	result := &LoadResult{Meetings: meetings, Sources: summaries}

	if failed == len(e.sources) {
		e.logger.Error("all meeting sources failed")
		return result, usecaseErrors.ErrAllSourcesFailed
	}

	if e.bus != nil {
		e.bus.Publish(eventbus.MeetingsUpdated{
			At:       time.Now(),
			Total:    len(meetings),
			Degraded: degraded,
		})
	}

	return result, nil
}

// loadSource runs one isolated source fetch under its own timeout. A failure
// degrades the source to an empty contribution with a recorded warning.
func (e *Engine) loadSource(ctx context.Context, src Source) sourceResult {
	name := src.Name()

	var meetings []entities.Meeting
	var dropped int

	operation := func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, e.opts.FetchTimeout)
		defer cancel()

		var err error
		meetings, dropped, err = src.Load(fetchCtx)
		if errors.Is(err, automation.ErrNotConfigured) {
			// Not configured will not heal within this load.
			return backoff.Permanent(err)
		}
		return err
	}

	var err error
	if e.opts.RetryDegraded {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 500 * time.Millisecond
		bo.MaxElapsedTime = e.opts.FetchTimeout
		err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, 1), ctx))
	} else {
		err = operation()
	}

	if err != nil {
		e.logger.Warn("meeting source failed, degrading to empty contribution",
			zap.String("source", string(name)),
			zap.Error(err),
		)
		e.count(name, SourceFailed)
		return sourceResult{summary: SourceSummary{
			Source: name,
			State:  SourceFailed,
			Error:  err.Error(),
		}}
	}

	state := SourceSuccess
	if dropped > 0 {
		state = SourceDegraded
	}
	e.count(name, state)
	if e.metrics != nil && dropped > 0 {
		e.metrics.RecordsDropped.WithLabelValues(string(name)).Add(float64(dropped))
	}

	return sourceResult{
		summary: SourceSummary{
			Source:  name,
			State:   state,
			Records: len(meetings),
			Dropped: dropped,
		},
		meetings: meetings,
	}
}

func (e *Engine) count(source entities.MeetingSource, state SourceState) {
	if e.metrics != nil {
		e.metrics.SourceFetches.WithLabelValues(string(source), string(state)).Inc()
	}
}

// sortMeetings orders by effective start time descending, ties broken by
// canonical id ascending so output is stable across runs.
func sortMeetings(meetings []entities.Meeting) {
	sort.Slice(meetings, func(i, j int) bool {
		ti, tj := meetings[i].EffectiveStart(), meetings[j].EffectiveStart()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return meetings[i].ID < meetings[j].ID
	})
}
