// Package metrics exposes prometheus counters for the engine, the action
// dispatcher and the periodic jobs.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/engine"
)

type Metrics struct {
	registry prometheus.Gatherer

	EventsHandled       *prometheus.CounterVec
	EventDuration       *prometheus.HistogramVec
	ActionsEmittedTotal *prometheus.CounterVec
	ActionFailures      *prometheus.CounterVec
	PersistenceFailures prometheus.Counter
	JobRuns             *prometheus.CounterVec
	RemindersPending    prometheus.Gauge
	StorePending        prometheus.Gauge
}

var _ engine.Metrics = (*Metrics)(nil)

// New registers the collectors on reg. A nil reg uses a fresh registry so
// several instances can coexist in tests.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EventsHandled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_events_handled_total",
			Help: "Total number of gateway events handled by the engine",
		}, []string{"kind"}),
		EventDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warden_event_duration_seconds",
			Help:    "Time spent handling one event",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind"}),
		ActionsEmittedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_actions_emitted_total",
			Help: "Total number of actions emitted by the engine",
		}, []string{"kind"}),
		ActionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_action_failures_total",
			Help: "Total number of actions the gateway failed to execute",
		}, []string{"kind", "reason"}),
		PersistenceFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "warden_persistence_failures_total",
			Help: "Total number of failed writes to the storage backend",
		}),
		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_job_runs_total",
			Help: "Total number of periodic job runs",
		}, []string{"job", "status"}),
		RemindersPending: f.NewGauge(prometheus.GaugeOpts{
			Name: "warden_reminders_pending",
			Help: "Number of reminders waiting to be delivered",
		}),
		StorePending: f.NewGauge(prometheus.GaugeOpts{
			Name: "warden_store_dirty_records",
			Help: "Number of records whose last write has not reached storage",
		}),
	}
}

func (m *Metrics) EventHandled(kind engine.EventKind, took time.Duration) {
	m.EventsHandled.WithLabelValues(string(kind)).Inc()
	m.EventDuration.WithLabelValues(string(kind)).Observe(took.Seconds())
}

func (m *Metrics) ActionsEmitted(acts []actions.Action) {
	for _, a := range acts {
		m.ActionsEmittedTotal.WithLabelValues(string(a.Kind())).Inc()
	}
}

func (m *Metrics) PersistenceFailed(error) {
	m.PersistenceFailures.Inc()
}

// ActionFailed records a failure reported by the dispatcher.
func (m *Metrics) ActionFailed(f *actions.Failure) {
	reason := "error"
	if errors.Is(f, actions.ErrPermissionDenied) {
		reason = "permission_denied"
	}
	m.ActionFailures.WithLabelValues(string(f.Action.Kind()), reason).Inc()
}

func (m *Metrics) JobRan(job string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.JobRuns.WithLabelValues(job, status).Inc()
}

func (m *Metrics) SetPending(reminders int, records int) {
	m.RemindersPending.Set(float64(reminders))
	m.StorePending.Set(float64(records))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop metrics server", slog.String("type", "sys"), slog.Any("error", err))
		}
	}()

	slog.Info("Metrics server listening", slog.String("type", "sys"), slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
