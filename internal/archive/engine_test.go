package archive

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/recall/internal/index"
	"github.com/starford/recall/internal/models"
	"github.com/starford/recall/internal/storage"
	"github.com/starford/recall/internal/testutil"
	"github.com/starford/recall/internal/workspace"
)

type countingBuilder struct {
	calls int
	err   error
}

func (c *countingBuilder) Rebuild() (*index.Result, error) {
	c.calls++
	return &index.Result{}, c.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed(t *testing.T, layout *workspace.Layout, ages map[string]float64) {
	t.Helper()
	for id, days := range ages {
		mod := time.Now().Add(-time.Duration(days * 24 * float64(time.Hour)))
		testutil.WriteRecord(t, layout, models.Active, id, testutil.Summary(id, "k", ""), "log", mod)
	}
}

func newEngine(store storage.Provider, b index.Rebuilder, p Policy) *Engine {
	return NewEngine(store, b, p, quietLogger())
}

func activeIDs(t *testing.T, store storage.Provider, p models.Partition) map[string]bool {
	t.Helper()
	recs, err := store.List(p)
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]bool)
	for _, r := range recs {
		out[r.ID] = true
	}
	return out
}

func TestRun_ApplyCapacity(t *testing.T) {
	layout, store := testutil.TestWorkspace(t)
	seed(t, layout, map[string]float64{
		"mem-20260101-000000": 3,
		"mem-20260102-000000": 2,
		"mem-20260103-000000": 1,
	})
	b := &countingBuilder{}
	rep, err := newEngine(store, b, Policy{ThresholdDays: 14, MaxActive: 2}).Run(Apply, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Moved) != 1 || rep.Moved[0] != "mem-20260101-000000" {
		t.Errorf("moved = %v", rep.Moved)
	}
	active := activeIDs(t, store, models.Active)
	if len(active) != 2 || active["mem-20260101-000000"] {
		t.Errorf("active = %v", active)
	}
	if !activeIDs(t, store, models.Archive)["mem-20260101-000000"] {
		t.Error("oldest record not in archive")
	}
	if b.calls != 1 {
		t.Errorf("rebuild called %d times, want 1", b.calls)
	}
	if rep.Remaining != 2 {
		t.Errorf("remaining = %d", rep.Remaining)
	}
}

func TestRun_DryRunMovesNothing(t *testing.T) {
	layout, store := testutil.TestWorkspace(t)
	seed(t, layout, map[string]float64{
		"mem-20260101-000000": 30,
		"mem-20260102-000000": 1,
	})
	b := &countingBuilder{}
	rep, err := newEngine(store, b, DefaultPolicy()).Run(DryRun, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Candidates) != 1 || rep.Candidates[0].Reason != models.ReasonAge {
		t.Errorf("candidates = %+v", rep.Candidates)
	}
	if len(rep.Moved) != 0 || b.calls != 0 {
		t.Errorf("dry run moved %v, rebuilt %d times", rep.Moved, b.calls)
	}
	if len(activeIDs(t, store, models.Active)) != 2 {
		t.Error("dry run changed the active partition")
	}
}

func TestRun_ForceMovesOldest(t *testing.T) {
	layout, store := testutil.TestWorkspace(t)
	seed(t, layout, map[string]float64{
		"mem-20260101-000000": 3,
		"mem-20260102-000000": 2,
		"mem-20260103-000000": 1,
	})
	rep, err := newEngine(store, &countingBuilder{}, DefaultPolicy()).Run(Apply, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Moved) != 1 || rep.Moved[0] != "mem-20260101-000000" {
		t.Errorf("moved = %v", rep.Moved)
	}
}

func TestRun_NoCandidatesSkipsRebuild(t *testing.T) {
	layout, store := testutil.TestWorkspace(t)
	seed(t, layout, map[string]float64{"mem-20260101-000000": 1})
	b := &countingBuilder{}
	if _, err := newEngine(store, b, DefaultPolicy()).Run(Apply, false); err != nil {
		t.Fatal(err)
	}
	if b.calls != 0 {
		t.Errorf("rebuild called %d times", b.calls)
	}
}

func TestRun_RebuildErrorSurfaces(t *testing.T) {
	layout, store := testutil.TestWorkspace(t)
	seed(t, layout, map[string]float64{"mem-20260101-000000": 30})
	boom := errors.New("boom")
	rep, err := newEngine(store, &countingBuilder{err: boom}, DefaultPolicy()).Run(Apply, false)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if rep == nil || len(rep.Moved) != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestRun_WithRealBuilder(t *testing.T) {
	layout, store := testutil.TestWorkspace(t)
	seed(t, layout, map[string]float64{
		"mem-20260101-000000": 30,
		"mem-20260102-000000": 1,
	})
	b := index.NewBuilder(layout, store, quietLogger())
	if _, err := newEngine(store, b, DefaultPolicy()).Run(Apply, false); err != nil {
		t.Fatal(err)
	}
	md, err := b.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(md) != 1 || md[0].ID != "mem-20260102-000000" {
		t.Errorf("indexed = %+v", md)
	}
}

func TestStats(t *testing.T) {
	layout, store := testutil.TestWorkspace(t)
	seed(t, layout, map[string]float64{
		"mem-20260101-000000": 30,
		"mem-20260102-000000": 3,
		"mem-20260103-000000": 2,
		"mem-20260104-000000": 1,
	})
	testutil.WriteRecord(t, layout, models.Archive, "mem-20251201-000000", "", "", time.Time{})

	st, err := newEngine(store, &countingBuilder{}, Policy{ThresholdDays: 14, MaxActive: 2}).Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.ActiveCount != 4 || st.ArchivedCount != 1 {
		t.Errorf("counts = %d/%d", st.ActiveCount, st.ArchivedCount)
	}
	if st.OverAge != 1 || st.OverCapacity != 1 {
		t.Errorf("over age/capacity = %d/%d", st.OverAge, st.OverCapacity)
	}
	if st.OldestActive != "mem-20260101-000000" || st.NewestActive != "mem-20260104-000000" {
		t.Errorf("oldest/newest = %s/%s", st.OldestActive, st.NewestActive)
	}
	if st.OldestAgeDays < 29.9 {
		t.Errorf("oldest age = %v", st.OldestAgeDays)
	}
}

func TestRun_SkipsRecordInBothPartitions(t *testing.T) {
	layout, store := testutil.TestWorkspace(t)
	seed(t, layout, map[string]float64{"mem-20260101-000000": 30})
	testutil.WriteRecord(t, layout, models.Archive, "mem-20260101-000000",
		testutil.Summary("copy", "k", ""), "log", time.Time{})

	b := &countingBuilder{}
	rep, err := newEngine(store, b, DefaultPolicy()).Run(Apply, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Moved) != 0 || rep.Remaining != 1 {
		t.Errorf("moved = %v, remaining = %d", rep.Moved, rep.Remaining)
	}
	if !activeIDs(t, store, models.Active)["mem-20260101-000000"] {
		t.Error("record left the active partition")
	}
	if b.calls != 0 {
		t.Errorf("rebuild called %d times", b.calls)
	}
}
