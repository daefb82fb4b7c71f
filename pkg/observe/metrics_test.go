package observe

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

// counterValue sums a counter family across its label sets, or returns 0
// if the family has not been written yet.
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func histogramCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total uint64
		for _, m := range mf.GetMetric() {
			if h := m.GetHistogram(); h != nil {
				total += h.GetSampleCount()
			}
		}
		return total
	}
	return 0
}

func TestMetricsCountEngineActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	pulse.SetHooks(NewMetricsHooks(WithRegistry(reg)))
	defer pulse.SetHooks(nil)

	count := pulse.NewSignal(0)
	double := pulse.NewComputed(func() int { return count.Get() * 2 })

	e := pulse.CreateEffect(func() pulse.Cleanup {
		_ = double.Get()
		return nil
	})
	defer e.Dispose()

	count.Set(1)
	count.Set(2)
	count.Set(2) // equality-suppressed, not counted

	if got := counterValue(t, reg, "pulse_signal_writes_total"); got != 2 {
		t.Errorf("expected 2 signal writes, got %v", got)
	}
	// Creation read plus one recompute per effective write.
	if got := counterValue(t, reg, "pulse_computed_recomputes_total"); got != 3 {
		t.Errorf("expected 3 recomputes, got %v", got)
	}
	if got := counterValue(t, reg, "pulse_effect_runs_total"); got != 3 {
		t.Errorf("expected 3 effect runs, got %v", got)
	}
	if got := histogramCount(t, reg, "pulse_effect_run_duration_seconds"); got != 3 {
		t.Errorf("expected 3 duration samples, got %v", got)
	}
}

func TestMetricsCountBatchFlushes(t *testing.T) {
	reg := prometheus.NewRegistry()
	pulse.SetHooks(NewMetricsHooks(WithRegistry(reg)))
	defer pulse.SetHooks(nil)

	a := pulse.NewSignal(0)
	b := pulse.NewSignal(0)

	e := pulse.CreateEffect(func() pulse.Cleanup {
		_ = a.Get()
		_ = b.Get()
		return nil
	})
	defer e.Dispose()

	calls := 0
	unsub := a.Subscribe(func() { calls++ })
	defer unsub()

	pulse.Batch(func() {
		a.Set(1)
		a.Set(2)
		b.Set(3)
	})

	if got := counterValue(t, reg, "pulse_batch_flushes_total"); got != 1 {
		t.Errorf("expected 1 batch flush, got %v", got)
	}
	// The effect enqueues itself once no matter how many of its inputs
	// change; the subscriber callback queues per write to a, so the two
	// writes collapse from two queue entries to one notification.
	if got := counterValue(t, reg, "pulse_batch_deduped_listeners_total"); got != 1 {
		t.Errorf("expected 1 deduped listener, got %v", got)
	}
	if calls != 1 {
		t.Errorf("expected subscriber coalesced to one call, got %d", calls)
	}
}

func TestMetricsPerNodeLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	pulse.SetHooks(NewMetricsHooks(WithRegistry(reg), WithPerNodeLabels(true)))
	defer pulse.SetHooks(nil)

	a := pulse.NewSignal(0)
	b := pulse.NewSignal(0)
	a.Set(1)
	b.Set(1)
	a.Set(2)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "pulse_signal_writes_total" {
			continue
		}
		if len(mf.GetMetric()) != 2 {
			t.Errorf("expected one series per signal, got %d", len(mf.GetMetric()))
		}
		return
	}
	t.Fatal("pulse_signal_writes_total not found")
}
