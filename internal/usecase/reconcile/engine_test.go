package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/g37/meeting-manager/internal/domain/entities"
	usecaseErrors "github.com/g37/meeting-manager/internal/usecase/errors"
	"github.com/g37/meeting-manager/pkg/eventbus"
)

type fakeSource struct {
	name     entities.MeetingSource
	meetings []entities.Meeting
	dropped  int
	err      error
	delay    time.Duration
}

func (f *fakeSource) Name() entities.MeetingSource { return f.name }

func (f *fakeSource) Load(ctx context.Context) ([]entities.Meeting, int, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.meetings, f.dropped, nil
}

func meetingAt(source entities.MeetingSource, localID string, start time.Time) entities.Meeting {
	return entities.Meeting{
		ID:            entities.CanonicalID(source, localID),
		Source:        source,
		SourceLocalID: localID,
		StartTime:     start,
	}
}

func summaryFor(t *testing.T, res *LoadResult, source entities.MeetingSource) SourceSummary {
	t.Helper()
	for _, s := range res.Sources {
		if s.Source == source {
			return s
		}
	}
	t.Fatalf("no summary for source %q", source)
	return SourceSummary{}
}

func TestEnginePartialFailureSucceeds(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine([]Source{
		&fakeSource{name: entities.SourcePrimary, meetings: []entities.Meeting{
			meetingAt(entities.SourcePrimary, "1", start),
		}},
		&fakeSource{name: entities.SourceAutomation, err: errors.New("webhook down")},
	}, Options{FetchTimeout: time.Second}, zap.NewNop(), nil, nil)

	res, err := engine.Load(context.Background())
	if err != nil {
		t.Fatalf("one healthy source must be enough: %v", err)
	}
	if len(res.Meetings) != 1 {
		t.Fatalf("expected 1 meeting, got %d", len(res.Meetings))
	}
	if s := summaryFor(t, res, entities.SourcePrimary); s.State != SourceSuccess {
		t.Errorf("primary state = %q, want success", s.State)
	}
	s := summaryFor(t, res, entities.SourceAutomation)
	if s.State != SourceFailed {
		t.Errorf("automation state = %q, want failed", s.State)
	}
	if s.Error == "" {
		t.Error("failed summary should carry the error message")
	}
}

func TestEngineAllSourcesFailed(t *testing.T) {
	engine := NewEngine([]Source{
		&fakeSource{name: entities.SourcePrimary, err: errors.New("down")},
		&fakeSource{name: entities.SourceAutomation, err: errors.New("down too")},
	}, Options{FetchTimeout: time.Second}, zap.NewNop(), nil, nil)

	res, err := engine.Load(context.Background())
	if !errors.Is(err, usecaseErrors.ErrAllSourcesFailed) {
		t.Fatalf("err = %v, want ErrAllSourcesFailed", err)
	}
	if res == nil || len(res.Sources) != 2 {
		t.Fatal("summaries must still be returned when everything fails")
	}
}

func TestEngineSlowSourceTimesOut(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine([]Source{
		&fakeSource{name: entities.SourcePrimary, meetings: []entities.Meeting{
			meetingAt(entities.SourcePrimary, "1", start),
		}},
		&fakeSource{name: entities.SourceAutomation, delay: 5 * time.Second},
	}, Options{FetchTimeout: 50 * time.Millisecond}, zap.NewNop(), nil, nil)

	done := make(chan struct{})
	var res *LoadResult
	var err error
	go func() {
		res, err = engine.Load(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load blocked on the slow source past its timeout")
	}

	if err != nil {
		t.Fatalf("timed-out source must degrade, not fail the load: %v", err)
	}
	if s := summaryFor(t, res, entities.SourceAutomation); s.State != SourceFailed {
		t.Errorf("slow source state = %q, want failed", s.State)
	}
	if len(res.Meetings) != 1 {
		t.Errorf("healthy source data must survive, got %d meetings", len(res.Meetings))
	}
}

func TestEngineDeterministicOrder(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC) }

	// Slowest source finishes last with the newest meeting; order must not
	// depend on completion order.
	engine := NewEngine([]Source{
		&fakeSource{name: entities.SourcePrimary, delay: 30 * time.Millisecond, meetings: []entities.Meeting{
			meetingAt(entities.SourcePrimary, "3", day(3)),
		}},
		&fakeSource{name: entities.SourceAutomation, meetings: []entities.Meeting{
			meetingAt(entities.SourceAutomation, "1", day(1)),
		}},
		&fakeSource{name: entities.SourceRecording, delay: 10 * time.Millisecond, meetings: []entities.Meeting{
			meetingAt(entities.SourceRecording, "2", day(2)),
		}},
	}, Options{FetchTimeout: time.Second}, zap.NewNop(), nil, nil)

	res, err := engine.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"primary:3", "recording-enriched:2", "automation:1"}
	if len(res.Meetings) != len(want) {
		t.Fatalf("got %d meetings, want %d", len(res.Meetings), len(want))
	}
	for i, id := range want {
		if res.Meetings[i].ID != id {
			t.Errorf("meetings[%d] = %q, want %q", i, res.Meetings[i].ID, id)
		}
	}
}

func TestEngineTieBreakByCanonicalID(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngine([]Source{
		&fakeSource{name: entities.SourcePrimary, meetings: []entities.Meeting{
			meetingAt(entities.SourcePrimary, "9", start),
			meetingAt(entities.SourcePrimary, "10", start),
		}},
	}, Options{FetchTimeout: time.Second}, zap.NewNop(), nil, nil)

	res, err := engine.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Meetings[0].ID != "primary:10" || res.Meetings[1].ID != "primary:9" {
		t.Errorf("equal starts should order by id ascending, got %q then %q",
			res.Meetings[0].ID, res.Meetings[1].ID)
	}
}

func TestEngineDroppedRecordsDegrade(t *testing.T) {
	engine := NewEngine([]Source{
		&fakeSource{name: entities.SourcePrimary, dropped: 2, meetings: []entities.Meeting{
			meetingAt(entities.SourcePrimary, "1", time.Now()),
		}},
	}, Options{FetchTimeout: time.Second}, zap.NewNop(), nil, nil)

	res, err := engine.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := summaryFor(t, res, entities.SourcePrimary)
	if s.State != SourceDegraded {
		t.Errorf("state = %q, want degraded", s.State)
	}
	if s.Dropped != 2 {
		t.Errorf("dropped = %d, want 2", s.Dropped)
	}
}

func TestEnginePublishesUpdateEvent(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	engine := NewEngine([]Source{
		&fakeSource{name: entities.SourcePrimary, meetings: []entities.Meeting{
			meetingAt(entities.SourcePrimary, "1", time.Now()),
		}},
		&fakeSource{name: entities.SourceAutomation, err: errors.New("down")},
	}, Options{FetchTimeout: time.Second}, zap.NewNop(), bus, nil)

	if _, err := engine.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case ev := <-sub.C:
		if ev.Total != 1 {
			t.Errorf("event total = %d, want 1", ev.Total)
		}
		if len(ev.Degraded) != 1 || ev.Degraded[0] != string(entities.SourceAutomation) {
			t.Errorf("event degraded = %v", ev.Degraded)
		}
	case <-time.After(time.Second):
		t.Fatal("no meetings-updated event published")
	}
}
