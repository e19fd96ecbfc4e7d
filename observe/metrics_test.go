package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/israelbalog04/acer-music-sub000/gate"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return rm
}

func TestMetrics_RecordExecution(t *testing.T) {
	m, reader, _ := newTestMetrics(t)
	ctx := context.Background()
	meta := OpMeta{Operation: "find_one", Model: "users"}

	m.RecordExecution(ctx, meta, 20*time.Millisecond, 1, nil)
	m.RecordExecution(ctx, meta, 40*time.Millisecond, 3, errors.New("boom"))

	rm := collect(t, reader)

	total := findMetric(rm, "dbpool.exec.total")
	if total == nil {
		t.Fatal("dbpool.exec.total not found")
	}
	if got := sumValue(total); got != 2 {
		t.Errorf("dbpool.exec.total = %d, want 2", got)
	}

	errs := findMetric(rm, "dbpool.exec.errors")
	if errs == nil {
		t.Fatal("dbpool.exec.errors not found")
	}
	if got := sumValue(errs); got != 1 {
		t.Errorf("dbpool.exec.errors = %d, want 1", got)
	}

	attempts := findMetric(rm, "dbpool.exec.attempts")
	if attempts == nil {
		t.Fatal("dbpool.exec.attempts not found")
	}
	hist, ok := attempts.Data.(metricdata.Histogram[int64])
	if !ok {
		t.Fatalf("attempts data = %T, want Histogram[int64]", attempts.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Sum != 4 {
		t.Errorf("attempts histogram = %+v, want sum 4", hist.DataPoints)
	}

	if findMetric(rm, "dbpool.exec.duration_ms") == nil {
		t.Error("dbpool.exec.duration_ms not found")
	}
}

func TestMetrics_RecordRetryAndRecovery(t *testing.T) {
	m, reader, _ := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRetry(ctx, OpMeta{Operation: "create"}, "transient")
	m.RecordRetry(ctx, OpMeta{Operation: "create"}, "stale_session")
	m.RecordRecovery(ctx, nil)

	rm := collect(t, reader)

	retries := findMetric(rm, "dbpool.exec.retries")
	if retries == nil {
		t.Fatal("dbpool.exec.retries not found")
	}
	if got := sumValue(retries); got != 2 {
		t.Errorf("dbpool.exec.retries = %d, want 2", got)
	}

	recoveries := findMetric(rm, "dbpool.client.recoveries")
	if recoveries == nil {
		t.Fatal("dbpool.client.recoveries not found")
	}
	if got := sumValue(recoveries); got != 1 {
		t.Errorf("dbpool.client.recoveries = %d, want 1", got)
	}
}

func TestRegisterGateGauges(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	g := gate.New(3)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer g.Release()

	reg, err := RegisterGateGauges(mp.Meter("test"), g.Stats)
	if err != nil {
		t.Fatalf("RegisterGateGauges() error = %v", err)
	}
	defer func() { _ = reg.Unregister() }()

	rm := collect(t, reader)

	tests := map[string]int64{
		"dbpool.gate.active":   1,
		"dbpool.gate.queued":   0,
		"dbpool.gate.capacity": 3,
	}
	for name, want := range tests {
		m := findMetric(rm, name)
		if m == nil {
			t.Errorf("%s not found", name)
			continue
		}
		gauge, ok := m.Data.(metricdata.Gauge[int64])
		if !ok || len(gauge.DataPoints) != 1 {
			t.Errorf("%s data = %+v", name, m.Data)
			continue
		}
		if gauge.DataPoints[0].Value != want {
			t.Errorf("%s = %d, want %d", name, gauge.DataPoints[0].Value, want)
		}
	}
}

func TestNopMetrics(t *testing.T) {
	m := NopMetrics()
	ctx := context.Background()
	m.RecordExecution(ctx, OpMeta{Operation: "ping"}, time.Millisecond, 1, nil)
	m.RecordRetry(ctx, OpMeta{Operation: "ping"}, "transient")
	m.RecordRecovery(ctx, errors.New("x"))
}
