package metrics

import "github.com/kilianp07/autosampler/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusAddr serves /metrics when not empty.
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}
