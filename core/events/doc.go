// Package events defines the sampler events emitted on the event bus.
//
// Available event types:
//   - ActionEvent: an experiment was run, moved, reset or failed
//   - RebuildEvent: the tracked vessel's bookkeeping was rebuilt
//   - SettingEvent: a craft setting changed through a command
//   - TickEvent: a full evaluation pass completed
package events
