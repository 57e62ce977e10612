// Package metrics defines interfaces for recording sampler activity. Sinks
// like PromSink and InfluxSink record actions taken on experiments and can
// be combined with NewMultiSink. The factory helpers return a MultiSink
// automatically when multiple sinks are configured.
package metrics
