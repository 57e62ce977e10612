package events

import "time"

// RebuildEvent is published after the tracked vessel's bookkeeping is rebuilt.
type RebuildEvent struct {
	Time        time.Time
	VesselID    string
	Experiments int
	Holders     int
	Subjects    int
}

// SettingEvent is published when a craft setting changes.
type SettingEvent struct {
	CraftKey string
	Setting  string
	Value    string
}

// TickEvent is published after every full evaluation pass.
type TickEvent struct {
	Time     time.Time
	VesselID string
	// Evaluated is the number of experiments inspected before the pass ended.
	Evaluated int
	Duration  time.Duration
}
