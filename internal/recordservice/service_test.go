package recordservice

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/recall/internal/apperr"
	"github.com/starford/recall/internal/index"
	"github.com/starford/recall/internal/models"
	"github.com/starford/recall/internal/testutil"
	"github.com/starford/recall/internal/workspace"
)

func testService(t *testing.T) (*Service, *workspace.Layout) {
	t.Helper()
	layout, store := testutil.TestWorkspace(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, index.NewBuilder(layout, store, logger), logger), layout
}

func TestCreate_RebuildsIndex(t *testing.T) {
	svc, layout := testService(t)
	svc.now = func() time.Time { return time.Date(2026, 1, 11, 14, 30, 0, 0, time.Local) }

	rec, err := svc.Create("")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID != "mem-20260111-143000" {
		t.Errorf("id = %s", rec.ID)
	}
	doc, _ := os.ReadFile(layout.IndexFile())
	if !strings.Contains(string(doc), "| mem-20260111-143000 | [Topic] |") {
		t.Errorf("index missing new record:\n%s", doc)
	}
	if !strings.Contains(string(doc), "## Keywords\n\n(none)\n") {
		t.Errorf("placeholder keywords leaked into index:\n%s", doc)
	}

	if _, err := svc.Create("mem-20260111-143000"); !errors.Is(err, apperr.ErrDuplicateRecord) {
		t.Errorf("duplicate err = %v", err)
	}
}

func TestReactivate(t *testing.T) {
	svc, layout := testService(t)
	old := time.Now().Add(-60 * 24 * time.Hour)
	testutil.WriteRecord(t, layout, models.Archive, "mem-20260101-000000", testutil.Summary("Back", "k", ""), "", old)

	out, err := svc.Reactivate("mem-20260101-000000")
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if out != Reactivated {
		t.Errorf("outcome = %s", out)
	}
	info, err := os.Stat(layout.RecordDir(models.Active, "mem-20260101-000000"))
	if err != nil {
		t.Fatalf("record not active: %v", err)
	}
	if time.Since(info.ModTime()) > time.Hour {
		t.Errorf("mod time not refreshed: %v", info.ModTime())
	}
	doc, _ := os.ReadFile(layout.IndexFile())
	if !strings.Contains(string(doc), "| mem-20260101-000000 | Back |") {
		t.Errorf("index missing reactivated record:\n%s", doc)
	}

	out, err = svc.Reactivate("mem-20260101-000000")
	if err != nil || out != AlreadyActive {
		t.Errorf("second reactivate = %s, %v", out, err)
	}
}

func TestReactivate_NotFound(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Reactivate("mem-20260101-000000"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Reactivate(""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestListArchived(t *testing.T) {
	svc, layout := testService(t)
	testutil.WriteRecord(t, layout, models.Archive, "mem-20260101-000000", testutil.Summary("A", "", "d1"), "", time.Time{})
	testutil.WriteRecord(t, layout, models.Archive, "mem-20260201-000000", testutil.Summary("B", "", "d2"), "", time.Time{})
	testutil.WriteRecord(t, layout, models.Active, "mem-20260301-000000", testutil.Summary("C", "", "d3"), "", time.Time{})

	got, err := svc.ListArchived()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Topic != "B" || got[1].Topic != "A" {
		t.Errorf("archived = %+v", got)
	}
}

func TestSearch(t *testing.T) {
	svc, layout := testService(t)
	testutil.WriteRecord(t, layout, models.Active, "mem-20260101-000000", testutil.Summary("API Design", "rest", ""), "nothing", time.Time{})
	testutil.WriteRecord(t, layout, models.Active, "mem-20260102-000000", testutil.Summary("Other", "Database, api-gateway", ""), "", time.Time{})
	testutil.WriteRecord(t, layout, models.Archive, "mem-20260103-000000", testutil.Summary("Old", "misc", ""), "we discussed the API at length", time.Time{})
	testutil.WriteRecord(t, layout, models.Archive, "mem-20260104-000000", testutil.Summary("Unrelated", "misc", ""), "no match", time.Time{})

	hits, err := svc.Search("api")
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		id    string
		p     models.Partition
		field string
	}{
		{"mem-20260101-000000", models.Active, models.MatchTopic},
		{"mem-20260102-000000", models.Active, models.MatchKeywords},
		{"mem-20260103-000000", models.Archive, models.MatchFullLog},
	}
	if len(hits) != len(want) {
		t.Fatalf("hits = %+v", hits)
	}
	for i, w := range want {
		if hits[i].ID != w.id || hits[i].Partition != w.p || hits[i].MatchedIn != w.field {
			t.Errorf("hit[%d] = %+v, want %+v", i, hits[i], w)
		}
	}
}

func TestSearch_ByName(t *testing.T) {
	svc, layout := testService(t)
	testutil.WriteRecord(t, layout, models.Active, "mem-20260101-000000", testutil.Summary("x", "", ""), "", time.Time{})
	hits, err := svc.Search("MEM-202601")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].MatchedIn != models.MatchName {
		t.Errorf("hits = %+v", hits)
	}
}

func TestSearch_EmptyKeyword(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Search("  "); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("err = %v", err)
	}
}

func TestRead(t *testing.T) {
	svc, layout := testService(t)
	testutil.WriteRecord(t, layout, models.Archive, "mem-20260101-000000", "summary body", "", time.Time{})
	p, data, err := svc.Read("mem-20260101-000000")
	if err != nil || p != models.Archive || string(data) != "summary body" {
		t.Errorf("Read = %s, %q, %v", p, data, err)
	}
	if _, _, err := svc.Read("mem-20990101-000000"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}
