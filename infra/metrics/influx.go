package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/evfleet/ocppcore/core/metrics"
	"github.com/evfleet/ocppcore/infra/logger"
)

// InfluxSink writes charging events to an InfluxDB instance using the
// official client.
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

// RecordProfileDecision writes a validation decision as line protocol.
func (s *InfluxSink) RecordProfileDecision(d coremetrics.ProfileDecision) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("profile_decision").
		AddTag("evse_id", strconv.Itoa(d.EvseID)).
		AddTag("purpose", string(d.Purpose)).
		AddTag("result", d.Result).
		AddTag("accepted", strconv.FormatBool(d.Accepted)).
		AddTag("component", "charging_engine").
		AddField("profile_id", d.ProfileID).
		SetTime(d.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCompositeQuery persists a composite schedule computation.
func (s *InfluxSink) RecordCompositeQuery(q coremetrics.CompositeQuery) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("composite_query").
		AddTag("evse_id", strconv.Itoa(q.EvseID)).
		AddTag("unit", string(q.Unit)).
		AddTag("component", "charging_engine").
		AddField("window_seconds", q.WindowSeconds).
		AddField("periods", q.Periods).
		AddField("duration_ms", round3(q.Duration.Seconds()*1000)).
		SetTime(q.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordClear records profiles removed by a clear request.
func (s *InfluxSink) RecordClear(ev coremetrics.ClearEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("profiles_cleared").
		AddTag("component", "charging_engine").
		AddField("removed", ev.Removed).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStoredProfiles writes a snapshot of the installed profile count.
func (s *InfluxSink) RecordStoredProfiles(count int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("profiles_stored").
		AddTag("component", "charging_engine").
		AddField("count", count).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
