package telemetry

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/sigstore/pkg/host"
	"github.com/vango-dev/sigstore/pkg/reactive"
	"github.com/vango-dev/sigstore/pkg/sigstore"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

type counterStore struct {
	sigstore.Base
	count *reactive.Signal[int]
}

func TestMetricsObserveTreeAndStore(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	rt := reactive.NewRuntime()

	def := sigstore.Define("counter", func(n *host.Node, start int) *counterStore {
		count := reactive.NewSignal(rt, start)
		return &counterStore{
			Base:  sigstore.NewBase(rt, sigstore.Cells{"count": count}),
			count: count,
		}
	}, sigstore.WithObserver(m))
	countField := sigstore.NewField[int]("count")

	var store *counterStore
	display := host.Named("Display", func(n *host.Node) string {
		b := def.Bind(n)
		store = b.Store
		if countField.Get(b.Signals) > 0 {
			return "positive"
		}
		return "zero"
	})
	tree := host.NewTree(def.Provider(0, display), host.WithObserver(m))
	tree.Mount()

	if got := metricGaugeValue(t, m.scopesActive.WithLabelValues("counter")); got != 1 {
		t.Fatalf("scopes_active = %v, want 1", got)
	}
	if got := metricGaugeValue(t, m.subscriptionsActive); got != 1 {
		t.Fatalf("subscriptions_active = %v, want 1", got)
	}

	store.count.Set(1)
	if _, err := tree.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("Display")); got != 2 {
		t.Fatalf("renders_total(Display) = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("counter.Provider")); got != 1 {
		t.Fatalf("renders_total(counter.Provider) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.rerenderRequests.WithLabelValues("Display")); got != 1 {
		t.Fatalf("rerender_requests_total = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.subscriptionsTotal); got != 2 {
		t.Fatalf("subscriptions_established_total = %v, want 2", got)
	}
	if got := metricGaugeValue(t, m.subscriptionsActive); got != 1 {
		t.Fatalf("subscriptions_active after re-render = %v, want 1", got)
	}

	tree.Unmount()

	if got := metricGaugeValue(t, m.scopesActive.WithLabelValues("counter")); got != 0 {
		t.Fatalf("scopes_active after unmount = %v, want 0", got)
	}
	if got := metricGaugeValue(t, m.subscriptionsActive); got != 0 {
		t.Fatalf("subscriptions_active after unmount = %v, want 0", got)
	}
	if got := metricCounterValue(t, m.unmountsTotal.WithLabelValues("Display")); got != 1 {
		t.Fatalf("unmounts_total(Display) = %v, want 1", got)
	}
}

func TestMetricsSessionsAndActions(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.RecordAction("randomA", nil)
	m.RecordAction("randomA", nil)
	m.RecordAction("bogus", errors.New("unknown action"))
	m.ObserveFlush(3 * time.Millisecond)

	if got := metricGaugeValue(t, m.sessionsActive); got != 1 {
		t.Fatalf("sessions_active = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.actionsTotal.WithLabelValues("randomA", "success")); got != 2 {
		t.Fatalf("actions_total(randomA, success) = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.actionsTotal.WithLabelValues("bogus", "error")); got != 1 {
		t.Fatalf("actions_total(bogus, error) = %v, want 1", got)
	}
	if got := metricHistogramCount(t, m.flushDuration); got != 1 {
		t.Fatalf("flush_duration_seconds count = %v, want 1", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	m.SessionOpened()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "sigstore_sessions_active 1") {
		t.Fatalf("metrics output missing sessions gauge:\n%s", body)
	}
}

func TestMetricsSeparateRegistries(t *testing.T) {
	// Two instances on distinct registries must not collide.
	NewMetrics(WithRegistry(prometheus.NewRegistry()))
	NewMetrics(WithRegistry(prometheus.NewRegistry()))
}
