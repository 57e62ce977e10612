package config

import "fmt"

// SentryConfig defines settings for Sentry error monitoring. An empty DSN
// disables it.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}

func (c *SentryConfig) SetDefaults() {
	if c.DSN == "" {
		return
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.Release == "" {
		c.Release = "autosampler"
	}
}

func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate %v out of [0,1]", c.TracesSampleRate)
	}
	return nil
}
