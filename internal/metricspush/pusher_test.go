package metricspush

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
	"github.com/smallbiznis/taxbridge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	registry := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taxbridge_scheduler_job_runs_total",
		Help: "runs",
	}, []string{"job"})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "taxbridge_scheduler_last_success_timestamp_seconds",
		Help: "last success",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "taxbridge_scheduler_job_duration_seconds",
		Help: "duration",
	})
	registry.MustRegister(runs, lastSuccess, duration)

	runs.WithLabelValues("taxjar_log_retention").Add(3)
	lastSuccess.Set(1700000000)
	duration.Observe(0.5)
	return registry
}

func TestBuildRemoteWriteSeriesSkipsHistograms(t *testing.T) {
	families, err := testRegistry(t).Gather()
	require.NoError(t, err)

	series := buildRemoteWriteSeries(families, 42)
	require.Len(t, series, 2)

	byName := map[string]prompb.TimeSeries{}
	for _, ts := range series {
		for _, label := range ts.Labels {
			if label.Name == "__name__" {
				byName[label.Value] = ts
			}
		}
	}

	runs := byName["taxbridge_scheduler_job_runs_total"]
	require.Len(t, runs.Samples, 1)
	assert.Equal(t, float64(3), runs.Samples[0].Value)
	assert.Equal(t, int64(42), runs.Samples[0].Timestamp)
	assert.Equal(t, []prompb.Label{
		{Name: "__name__", Value: "taxbridge_scheduler_job_runs_total"},
		{Name: "job", Value: "taxjar_log_retention"},
	}, runs.Labels)

	assert.Contains(t, byName, "taxbridge_scheduler_last_success_timestamp_seconds")
	assert.NotContains(t, byName, "taxbridge_scheduler_job_duration_seconds")
}

func TestRemoteWritePusherSendsSnappyProtobuf(t *testing.T) {
	var received prompb.WriteRequest
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		decoded, err := snappy.Decode(nil, body)
		require.NoError(t, err)
		require.NoError(t, received.Unmarshal(decoded))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pusher := NewRemoteWritePusher(srv.URL, "secret")
	pusher.now = func() time.Time { return time.UnixMilli(1000) }

	require.NoError(t, pusher.Push(context.Background(), testRegistry(t)))
	assert.Equal(t, "snappy", headers.Get("Content-Encoding"))
	assert.Equal(t, "application/x-protobuf", headers.Get("Content-Type"))
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	assert.Len(t, received.Timeseries, 2)
}

func TestRemoteWritePusherReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewRemoteWritePusher(srv.URL, "").Push(context.Background(), testRegistry(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRemoteWritePusherSkipsEmptyGatherer(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	require.NoError(t, NewRemoteWritePusher(srv.URL, "").Push(context.Background(), prometheus.NewRegistry()))
	assert.Zero(t, calls.Load())
}

func TestPushgatewayPusher(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pusher := NewPushgatewayPusher(srv.URL, "taxbridge", map[string]string{"environment": "test", "": "skip"})
	require.NoError(t, pusher.Push(context.Background(), testRegistry(t)))
	assert.Equal(t, "/metrics/job/taxbridge/environment/test", path)

	err := NewPushgatewayPusher(srv.URL, " ", nil).Push(context.Background(), testRegistry(t))
	assert.Error(t, err)
}

func TestNewPusherSelection(t *testing.T) {
	log := zaptest.NewLogger(t)

	assert.Nil(t, NewPusher(config.Config{}, log))
	assert.Nil(t, NewPusher(config.Config{MetricsPushExporter: ExporterRemoteWrite}, log))
	assert.Nil(t, NewPusher(config.Config{MetricsPushExporter: ExporterRemoteWrite, MetricsPushEndpoint: "not a url"}, log))
	assert.Nil(t, NewPusher(config.Config{MetricsPushExporter: "statsd", MetricsPushEndpoint: "http://x"}, log))

	rw := NewPusher(config.Config{MetricsPushExporter: "Prometheus_Remote_Write", MetricsPushEndpoint: "http://collector/api/v1/write"}, log)
	assert.IsType(t, &RemoteWritePusher{}, rw)

	pg := NewPusher(config.Config{AppName: "taxbridge", MetricsPushExporter: ExporterPushgateway, MetricsPushEndpoint: "http://pushgateway:9091"}, log)
	assert.IsType(t, &PushgatewayPusher{}, pg)
}

type countingPusher struct {
	calls atomic.Int32
}

func (p *countingPusher) Push(context.Context, prometheus.Gatherer) error {
	p.calls.Add(1)
	return nil
}

func TestWorkerPushesAndFlushesOnStop(t *testing.T) {
	pusher := &countingPusher{}
	worker := NewWorker(pusher, prometheus.NewRegistry(), time.Hour, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return pusher.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, int32(2), pusher.calls.Load())
}
