// Package internal wires the recall components together and implements the
// bodies of the command-line entry points.
package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/recall/internal/archive"
	"github.com/starford/recall/internal/index"
	"github.com/starford/recall/internal/mcpserver"
	"github.com/starford/recall/internal/models"
	"github.com/starford/recall/internal/recordservice"
	"github.com/starford/recall/internal/schedule"
	"github.com/starford/recall/internal/storage"
	"github.com/starford/recall/internal/workspace"
)

// App holds the components of one invocation.
type App struct {
	cfg    *Config
	layout *workspace.Layout
	logger *slog.Logger
	out    io.Writer
	json   bool

	store    *storage.FS
	builder  *index.Builder
	records  *recordservice.Service
	archiver *archive.Engine
}

// New builds an App from the given options. A config and a layout are
// required.
func New(opts ...Option) (*App, error) {
	a := &application{}
	for _, opt := range opts {
		opt(a)
	}
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if a.layout == nil {
		return nil, fmt.Errorf("workspace layout is required")
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.out == nil {
		a.out = os.Stdout
	}

	store := storage.NewFS(a.layout)
	builder := index.NewBuilder(a.layout, store, a.logger)
	return &App{
		cfg:      a.config,
		layout:   a.layout,
		logger:   a.logger,
		out:      a.out,
		json:     a.json,
		store:    store,
		builder:  builder,
		records:  recordservice.NewService(store, builder, a.logger),
		archiver: archive.NewEngine(store, builder, a.config.Archive.Policy(), a.logger),
	}, nil
}

// NewLogger returns the text logger used by the CLI.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	a.printf("%s\n", b)
	return nil
}

func (a *App) ensure() error {
	return workspace.Ensure(a.layout, index.Seed)
}

// Create makes a new record and rebuilds the index.
func (a *App) Create(name string) error {
	if err := a.ensure(); err != nil {
		return err
	}
	rec, err := a.records.Create(name)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(rec)
	}
	a.printf("Created %s\n", rec.ID)
	a.printf("  summary:  %s\n", filepath.Join(rec.Dir, workspace.SummaryName))
	a.printf("  full log: %s\n", filepath.Join(rec.Dir, workspace.FullLogName))
	return nil
}

// RebuildIndex regenerates the index document and the skill keyword line.
func (a *App) RebuildIndex() error {
	res, err := a.builder.Rebuild()
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(res)
	}
	a.printf("Indexed %d active records, %d keywords\n", res.Records, len(res.Keywords))
	if !res.IndexChanged {
		a.printf("Index unchanged\n")
	}
	if res.SkillUpdated {
		a.printf("Updated keyword line in %s\n", a.layout.SkillFile())
	}
	return nil
}

// Reactivate moves an archived record back to the active partition.
func (a *App) Reactivate(name string) error {
	if err := a.ensure(); err != nil {
		return err
	}
	out, err := a.records.Reactivate(name)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(map[string]string{"id": name, "outcome": string(out)})
	}
	if out == recordservice.AlreadyActive {
		a.printf("%s is already active\n", name)
		return nil
	}
	a.printf("Reactivated %s\n", name)
	return nil
}

// ListArchived prints the archived records.
func (a *App) ListArchived() error {
	list, err := a.records.ListArchived()
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(list)
	}
	if len(list) == 0 {
		a.printf("No archived records\n")
		return nil
	}
	a.printf("%d archived records:\n", len(list))
	for _, md := range list {
		a.printf("  %s  %s  [%s]\n", md.ID, md.Topic, md.Date)
	}
	return nil
}

// Search prints records matching keyword in either partition.
func (a *App) Search(keyword string) error {
	hits, err := a.records.Search(keyword)
	if err != nil {
		return err
	}
	if a.json {
		if hits == nil {
			hits = []models.SearchHit{}
		}
		return a.printJSON(hits)
	}
	if len(hits) == 0 {
		a.printf("No records match %q\n", keyword)
		return nil
	}
	a.printf("%d records match %q:\n", len(hits), keyword)
	for _, h := range hits {
		a.printf("  [%s] %s  %s  (%s)\n", h.Partition, h.ID, h.Topic, h.MatchedIn)
	}
	return nil
}

// Archive runs the archival policy in dry-run or apply mode.
func (a *App) Archive(dryRun, force bool) error {
	if err := a.ensure(); err != nil {
		return err
	}
	mode := archive.Apply
	if dryRun {
		mode = archive.DryRun
	}
	rep, err := a.archiver.Run(mode, force)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(rep)
	}
	if len(rep.Candidates) == 0 {
		a.printf("Nothing to archive\n")
		return nil
	}
	verb := "Archived"
	if mode == archive.DryRun {
		verb = "Would archive"
	}
	a.printf("%s %d records:\n", verb, len(rep.Candidates))
	for _, c := range rep.Candidates {
		a.printf("  %s  %-8s  %.1f days\n", c.ID, c.Reason, c.Days)
	}
	if mode == archive.Apply {
		a.printf("%d records remain active\n", rep.Remaining)
	}
	return nil
}

// Stats prints the archive report.
func (a *App) Stats() error {
	st, err := a.archiver.Stats()
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(st)
	}
	a.printf("Active records:   %d (max %d)\n", st.ActiveCount, st.MaxActive)
	a.printf("Archived records: %d\n", st.ArchivedCount)
	a.printf("Age threshold:    %.1f days\n", st.ThresholdDays)
	if st.ActiveCount > 0 {
		a.printf("Oldest active:    %s (%.1f days)\n", st.OldestActive, st.OldestAgeDays)
		a.printf("Newest active:    %s (%.1f days)\n", st.NewestActive, st.NewestAgeDays)
	}
	a.printf("Due by age:       %d\n", st.OverAge)
	a.printf("Due by capacity:  %d\n", st.OverCapacity)
	return nil
}

// Watch keeps the index current while records change and, when a schedule
// is configured, runs the archive policy on it. It returns on SIGINT,
// SIGTERM or when ctx is cancelled.
func (a *App) Watch(ctx context.Context) error {
	if err := a.ensure(); err != nil {
		return err
	}
	if _, err := a.builder.Rebuild(); err != nil {
		return err
	}

	var sched *schedule.Scheduler
	if expr := a.cfg.Watch.ArchiveSchedule; expr != "" {
		var err error
		sched, err = schedule.New(expr, func() error {
			rep, err := a.archiver.Run(archive.Apply, false)
			if err != nil {
				return err
			}
			if len(rep.Moved) > 0 {
				a.logger.Info("watch: archived", slog.Int("count", len(rep.Moved)))
			}
			return nil
		}, a.logger)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return index.Watch(gCtx, a.layout, index.WatchOptions{Debounce: a.cfg.Watch.Debounce, Ignore: a.cfg.Watch.Ignore}, a.logger, func() {
			if _, err := a.builder.Rebuild(); err != nil {
				a.logger.Error("watch: rebuild failed", slog.String("error", err.Error()))
			}
		})
	})

	if sched != nil {
		g.Go(func() error { return sched.Run(gCtx) })
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			a.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	a.printf("Watching %s\n", a.layout.RecordsRoot())
	return g.Wait()
}

// ServeMCP serves the record tools over stdio until stdin closes.
func (a *App) ServeMCP() error {
	if err := a.ensure(); err != nil {
		return err
	}
	return mcpserver.New(a.records, a.archiver).ServeStdio()
}
