// Package metrics exposes client-side counters in Prometheus format.
//
// All recording methods are safe on a nil *Metrics so packages can take an
// optional collector without guarding every call.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "fsrmon"

// Metrics bundles the collectors registered on one registry.
type Metrics struct {
	Registry *prometheus.Registry

	MessagesReceived    *prometheus.CounterVec
	MessagesSent        *prometheus.CounterVec
	MalformedFrames     prometheus.Counter
	QueuedDropped       prometheus.Counter
	Connections         *prometheus.CounterVec
	UnexpectedCloses    prometheus.Counter
	ConnectionOpen      prometheus.Gauge
	DefaultsFetches     *prometheus.CounterVec
	SnapshotsNormalized prometheus.Counter
	Frames              *prometheus.CounterVec
}

// New registers every collector on a fresh registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		MessagesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Inbound websocket messages by action",
		}, []string{"action"}),
		MessagesSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Outbound websocket messages by action",
		}, []string{"action"}),
		MalformedFrames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_frames_total",
			Help:      "Inbound frames that were not [action, payload] arrays",
		}),
		QueuedDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queued_messages_dropped_total",
			Help:      "Messages queued while connecting that were discarded because the connection closed first",
		}),
		Connections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Websocket connection attempts by result",
		}, []string{"result"}),
		UnexpectedCloses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unexpected_closes_total",
			Help:      "Connections closed by the server or network rather than by the client",
		}),
		ConnectionOpen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_open",
			Help:      "1 while a websocket connection is open",
		}),
		DefaultsFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "defaults_fetches_total",
			Help:      "Bootstrap /defaults fetches by result",
		}, []string{"result"}),
		SnapshotsNormalized: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_normalized_total",
			Help:      "Value snapshots truncated or padded to the channel count",
		}),
		Frames: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_frames_total",
			Help:      "Render loop frame slots by loop and outcome",
		}, []string{"loop", "outcome"}),
	}
}

// Received counts one inbound message.
func (m *Metrics) Received(action string) {
	if m == nil {
		return
	}
	m.MessagesReceived.WithLabelValues(action).Inc()
}

// Sent counts one outbound message.
func (m *Metrics) Sent(action string) {
	if m == nil {
		return
	}
	m.MessagesSent.WithLabelValues(action).Inc()
}

// Malformed counts one undecodable frame.
func (m *Metrics) Malformed() {
	if m == nil {
		return
	}
	m.MalformedFrames.Inc()
}

// Dropped counts queued messages discarded on close.
func (m *Metrics) Dropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.QueuedDropped.Add(float64(n))
}

// Connected records a successful handshake.
func (m *Metrics) Connected() {
	if m == nil {
		return
	}
	m.Connections.WithLabelValues("opened").Inc()
	m.ConnectionOpen.Set(1)
}

// ConnectFailed records a failed dial.
func (m *Metrics) ConnectFailed() {
	if m == nil {
		return
	}
	m.Connections.WithLabelValues("failed").Inc()
}

// Disconnected records a connection leaving the open state.
func (m *Metrics) Disconnected(unexpected bool) {
	if m == nil {
		return
	}
	m.ConnectionOpen.Set(0)
	if unexpected {
		m.UnexpectedCloses.Inc()
	}
}

// DefaultsFetched records one bootstrap attempt.
func (m *Metrics) DefaultsFetched(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.DefaultsFetches.WithLabelValues(result).Inc()
}

// Normalized counts a snapshot whose width did not match.
func (m *Metrics) Normalized() {
	if m == nil {
		return
	}
	m.SnapshotsNormalized.Inc()
}

// Frame records a render loop slot as drawn or skipped.
func (m *Metrics) Frame(loop string, drawn bool) {
	if m == nil {
		return
	}
	outcome := "skipped"
	if drawn {
		outcome = "drawn"
	}
	m.Frames.WithLabelValues(loop, outcome).Inc()
}

// Handler serves the registry in text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown metrics server")
		}
	}()

	logger.Info().Str("listen", ln.Addr().String()).Msg("metrics server started")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}
