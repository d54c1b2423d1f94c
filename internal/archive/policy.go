// Package archive decides which active records move to the archive
// partition and carries the move out.
package archive

import (
	"sort"
	"time"

	"github.com/starford/recall/internal/models"
)

// Defaults used when no configuration overrides them.
const (
	DefaultThresholdDays = 14
	DefaultMaxActive     = 20
)

// Policy holds the archival thresholds.
type Policy struct {
	// ThresholdDays is the age in days past which a record is archived.
	ThresholdDays float64
	// MaxActive is the number of records allowed to stay active.
	MaxActive int
}

// DefaultPolicy returns the default thresholds.
func DefaultPolicy() Policy {
	return Policy{ThresholdDays: DefaultThresholdDays, MaxActive: DefaultMaxActive}
}

// DaysSince returns the fractional days between t and now.
func DaysSince(t, now time.Time) float64 {
	return now.Sub(t).Hours() / 24
}

// byAge orders records oldest first; ids break ties so the order is stable.
func byAge(recs []models.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].ModTime.Equal(recs[j].ModTime) {
			return recs[i].ModTime.Before(recs[j].ModTime)
		}
		return recs[i].ID < recs[j].ID
	})
}

// Plan returns the archival candidates among active records.
//
// Records older than the threshold are selected first with reason "age".
// Capacity is then computed on the remainder only: the oldest records over
// MaxActive are selected with reason "capacity". When force is set the
// capacity check is skipped and exactly the oldest remaining record is
// selected with reason "forced".
func Plan(active []models.Record, now time.Time, p Policy, force bool) []models.Candidate {
	sorted := make([]models.Record, len(active))
	copy(sorted, active)
	byAge(sorted)

	var out []models.Candidate
	var remaining []models.Record
	for _, r := range sorted {
		days := DaysSince(r.ModTime, now)
		if days > p.ThresholdDays {
			out = append(out, models.Candidate{Record: r, Reason: models.ReasonAge, Days: days})
			continue
		}
		remaining = append(remaining, r)
	}

	if force {
		if len(remaining) > 0 {
			r := remaining[0]
			out = append(out, models.Candidate{Record: r, Reason: models.ReasonForced, Days: DaysSince(r.ModTime, now)})
		}
		return out
	}

	if excess := len(remaining) - p.MaxActive; excess > 0 {
		for _, r := range remaining[:excess] {
			out = append(out, models.Candidate{Record: r, Reason: models.ReasonCapacity, Days: DaysSince(r.ModTime, now)})
		}
	}
	return out
}
