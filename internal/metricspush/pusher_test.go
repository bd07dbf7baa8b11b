package metricspush

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	registry := prometheus.NewRegistry()
	members := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "gym_members", Help: "members"}, []string{"status"})
	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "gym_sweeps_total", Help: "sweeps"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "gym_latency_seconds", Help: "latency"})
	registry.MustRegister(members, runs, latency)

	members.WithLabelValues("Active").Set(12)
	runs.Add(3)
	latency.Observe(0.2)
	return registry
}

func TestBuildRemoteWriteSeriesSkipsHistograms(t *testing.T) {
	families, err := testRegistry(t).Gather()
	require.NoError(t, err)

	series := buildRemoteWriteSeries(families, 1700000000000)
	require.Len(t, series, 2)

	byName := map[string]prompb.TimeSeries{}
	for _, s := range series {
		for _, l := range s.Labels {
			if l.Name == "__name__" {
				byName[l.Value] = s
			}
		}
	}
	require.Contains(t, byName, "gym_members")
	require.Contains(t, byName, "gym_sweeps_total")
	assert.Equal(t, 12.0, byName["gym_members"].Samples[0].Value)
	assert.Equal(t, int64(1700000000000), byName["gym_members"].Samples[0].Timestamp)
	assert.Equal(t, []prompb.Label{{Name: "__name__", Value: "gym_members"}, {Name: "status", Value: "Active"}}, byName["gym_members"].Labels)
}

func TestRemoteWritePusherPush(t *testing.T) {
	var received prompb.WriteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "snappy", r.Header.Get("Content-Encoding"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		decoded, err := snappy.Decode(nil, raw)
		require.NoError(t, err)
		require.NoError(t, received.Unmarshal(decoded))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pusher := NewRemoteWritePusher(srv.URL, " secret ")
	require.NoError(t, pusher.Push(context.Background(), testRegistry(t)))
	assert.Len(t, received.Timeseries, 2)
}

func TestRemoteWritePusherRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewRemoteWritePusher(srv.URL, "").Push(context.Background(), testRegistry(t))
	assert.Error(t, err)
}

func TestNewPusher(t *testing.T) {
	log := zap.NewNop()
	assert.Nil(t, NewPusher(config.Config{}, log))

	cfg := config.Config{AppName: "gymdesk", MetricsPush: config.MetricsPushConfig{Enabled: true}}
	assert.Nil(t, NewPusher(cfg, log))

	cfg.MetricsPush.Exporter = "carrier_pigeon"
	cfg.MetricsPush.Endpoint = "http://collector"
	assert.Nil(t, NewPusher(cfg, log))

	cfg.MetricsPush.Exporter = ExporterRemoteWrite
	cfg.MetricsPush.Endpoint = "not a url"
	assert.Nil(t, NewPusher(cfg, log))

	cfg.MetricsPush.Endpoint = "http://collector/api/v1/write"
	_, ok := NewPusher(cfg, log).(*RemoteWritePusher)
	assert.True(t, ok)

	cfg.MetricsPush.Exporter = ExporterPushgateway
	_, ok = NewPusher(cfg, log).(*PushgatewayPusher)
	assert.True(t, ok)
}
