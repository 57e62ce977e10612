// Package infra contains the adapters around the sampler: the MQTT command
// bridge, metrics exporters, Sentry monitoring, zerolog logging and the
// settings file store. These packages depend on the interfaces defined in
// the core packages, never the other way around.
package infra
