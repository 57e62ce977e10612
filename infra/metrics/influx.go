package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/autosampler/core/metrics"
	"github.com/kilianp07/autosampler/infra/logger"
)

// InfluxSink writes sampler activity to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAction writes one experiment_action point.
func (s *InfluxSink) RecordAction(rec coremetrics.ActionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("experiment_action").
		AddTag("vessel_id", rec.VesselID).
		AddTag("experiment_id", rec.ExperimentID).
		AddTag("action", rec.Action).
		AddField("value", round3(rec.Value))
	if rec.SubjectID != "" {
		p = p.AddField("subject_id", rec.SubjectID)
	}
	if rec.Error != "" {
		p = p.AddField("error", rec.Error)
	}
	p = p.SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRebuild writes the size of the tracked vessel.
func (s *InfluxSink) RecordRebuild(rec coremetrics.RebuildRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("vessel_rebuild").
		AddTag("vessel_id", rec.VesselID).
		AddField("experiments", rec.Experiments).
		AddField("holders", rec.Holders).
		AddField("subjects", rec.Subjects).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTick writes the duration of a full evaluation pass.
func (s *InfluxSink) RecordTick(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("sampler_pass").
		AddField("duration_ms", round3(float64(d)/float64(time.Millisecond))).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
