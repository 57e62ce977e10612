// Package journal persists every decision the sampler takes so runs can be
// inspected after the fact. Stores are JSONL files, rotating JSONL files or
// SQLite databases.
package journal

import (
	"context"
	"time"
)

// Record captures one decision taken on an experiment.
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	VesselID     string    `json:"vessel_id"`
	PartID       string    `json:"part_id"`
	ExperimentID string    `json:"experiment_id"`
	Action       string    `json:"action"`
	SubjectID    string    `json:"subject_id,omitempty"`
	Target       string    `json:"target,omitempty"`
	Value        float64   `json:"value"`
	Error        string    `json:"error,omitempty"`
}

// Query defines filters for retrieving records. Zero fields match anything.
type Query struct {
	Start        time.Time
	End          time.Time
	VesselID     string
	ExperimentID string
	Action       string
	// Limit keeps the most recent matches when positive.
	Limit int
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Match reports whether r passes every filter of q.
func (q Query) Match(r Record) bool {
	switch {
	case !q.Start.IsZero() && r.Timestamp.Before(q.Start):
		return false
	case !q.End.IsZero() && r.Timestamp.After(q.End):
		return false
	case q.VesselID != "" && r.VesselID != q.VesselID:
		return false
	case q.ExperimentID != "" && r.ExperimentID != q.ExperimentID:
		return false
	case q.Action != "" && r.Action != q.Action:
		return false
	}
	return true
}

func (q Query) limit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// NopStore drops every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
