package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/recall/internal/apperr"
	"github.com/starford/recall/internal/index"
	"github.com/starford/recall/internal/models"
	"github.com/starford/recall/internal/storage"
)

// Mode selects whether a run moves records or only reports them.
type Mode int

const (
	DryRun Mode = iota
	Apply
)

func (m Mode) String() string {
	if m == Apply {
		return "apply"
	}
	return "dry-run"
}

// Report is the outcome of one archive run.
type Report struct {
	Mode       Mode               `json:"-"`
	Candidates []models.Candidate `json:"candidates"`
	Moved      []string           `json:"moved"`
	Remaining  int                `json:"remaining_active"`
}

// Engine applies a Policy to the active partition.
type Engine struct {
	store   storage.Provider
	builder index.Rebuilder
	policy  Policy
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine creates a new archival engine.
func NewEngine(store storage.Provider, builder index.Rebuilder, policy Policy, logger *slog.Logger) *Engine {
	return &Engine{store: store, builder: builder, policy: policy, logger: logger, now: time.Now}
}

// Policy returns the thresholds the engine applies.
func (e *Engine) Policy() Policy { return e.policy }

// Run plans candidates and, in Apply mode, moves each of them to the
// archive partition and rebuilds the index once at the end.
func (e *Engine) Run(mode Mode, force bool) (*Report, error) {
	active, err := e.store.List(models.Active)
	if err != nil {
		return nil, fmt.Errorf("archive: list active: %w", err)
	}
	candidates := Plan(active, e.now(), e.policy, force)
	rep := &Report{Mode: mode, Candidates: candidates, Remaining: len(active)}
	if mode != Apply || len(candidates) == 0 {
		return rep, nil
	}

	for _, c := range candidates {
		if err := e.store.Relocate(c.ID, models.Active, models.Archive); err != nil {
			if errors.Is(err, apperr.ErrDuplicateRecord) {
				e.logger.Warn("archive: skipped record present in both partitions",
					slog.String("record", c.ID))
				continue
			}
			return rep, fmt.Errorf("archive: move %s: %w", c.ID, err)
		}
		rep.Moved = append(rep.Moved, c.ID)
		rep.Remaining--
		e.logger.Info("archive: moved",
			slog.String("record", c.ID),
			slog.String("reason", c.Reason),
			slog.Float64("days", c.Days))
	}

	if len(rep.Moved) == 0 {
		return rep, nil
	}
	if _, err := e.builder.Rebuild(); err != nil {
		return rep, fmt.Errorf("archive: rebuild index: %w", err)
	}
	return rep, nil
}

// Stats reports partition sizes and how the policy sees the active records.
func (e *Engine) Stats() (*models.Stats, error) {
	active, err := e.store.List(models.Active)
	if err != nil {
		return nil, fmt.Errorf("archive: list active: %w", err)
	}
	archived, err := e.store.List(models.Archive)
	if err != nil {
		return nil, fmt.Errorf("archive: list archive: %w", err)
	}

	now := e.now()
	st := &models.Stats{
		ActiveCount:   len(active),
		ArchivedCount: len(archived),
		ThresholdDays: e.policy.ThresholdDays,
		MaxActive:     e.policy.MaxActive,
	}
	for _, c := range Plan(active, now, e.policy, false) {
		switch c.Reason {
		case models.ReasonAge:
			st.OverAge++
		case models.ReasonCapacity:
			st.OverCapacity++
		}
	}
	if len(active) > 0 {
		sorted := make([]models.Record, len(active))
		copy(sorted, active)
		byAge(sorted)
		oldest, newest := sorted[0], sorted[len(sorted)-1]
		st.OldestActive = oldest.ID
		st.OldestAgeDays = DaysSince(oldest.ModTime, now)
		st.NewestActive = newest.ID
		st.NewestAgeDays = DaysSince(newest.ModTime, now)
	}
	return st, nil
}
