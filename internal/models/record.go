// Package models defines the domain types for recall.
package models

import (
	"regexp"
	"time"
)

// Partition is the location state of a record.
type Partition string

const (
	Active  Partition = "active"
	Archive Partition = "archive"
)

func (p Partition) String() string { return string(p) }

// Valid reports whether p is one of the two known partitions.
func (p Partition) Valid() bool {
	return p == Active || p == Archive
}

// IDLayout is the time layout embedded in a record id after the "mem-" prefix.
const IDLayout = "20060102-150405"

var idRe = regexp.MustCompile(`^mem-\d{8}-\d{6}$`)

// ValidID reports whether name follows the mem-YYYYMMDD-HHMMSS scheme.
func ValidID(name string) bool {
	return idRe.MatchString(name)
}

// NewID synthesizes a record id from t in t's location.
func NewID(t time.Time) string {
	return "mem-" + t.Format(IDLayout)
}

// Record is one record directory on disk.
type Record struct {
	ID        string    `json:"id"`
	Partition Partition `json:"partition"`
	Dir       string    `json:"dir"`
	ModTime   time.Time `json:"mod_time"`
}

// Metadata is what the extractor pulls out of a summary document.
type Metadata struct {
	ID       string `json:"id"`
	Topic    string `json:"topic"`
	Keywords string `json:"keywords"`
	Date     string `json:"date"`
}

// Reasons a record becomes an archival candidate.
const (
	ReasonAge      = "age"
	ReasonCapacity = "capacity"
	ReasonForced   = "forced"
)

// Candidate is a record selected by the archival policy.
type Candidate struct {
	Record
	Reason string  `json:"reason"`
	Days   float64 `json:"days_since_modified"`
}

// Fields a search hit can match on, in the order they are checked.
const (
	MatchName     = "name"
	MatchTopic    = "topic"
	MatchKeywords = "keywords"
	MatchFullLog  = "full-log"
)

// SearchHit is one search result.
type SearchHit struct {
	ID        string    `json:"id"`
	Partition Partition `json:"partition"`
	Topic     string    `json:"topic"`
	Date      string    `json:"date"`
	MatchedIn string    `json:"matched_in"`
}

// Stats summarizes the workspace for the archive stats report.
type Stats struct {
	ActiveCount   int     `json:"active_count"`
	ArchivedCount int     `json:"archived_count"`
	ThresholdDays float64 `json:"threshold_days"`
	MaxActive     int     `json:"max_active"`
	OverAge       int     `json:"over_age"`
	OverCapacity  int     `json:"over_capacity"`
	OldestActive  string  `json:"oldest_active,omitempty"`
	OldestAgeDays float64 `json:"oldest_age_days"`
	NewestActive  string  `json:"newest_active,omitempty"`
	NewestAgeDays float64 `json:"newest_age_days"`
}
