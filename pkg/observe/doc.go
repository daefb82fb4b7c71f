// Package observe instruments the pulse engine with Prometheus metrics
// and OpenTelemetry traces.
//
// Metrics attach through pulse.SetHooks and count signal writes,
// recomputations, effect runs, and batch flushes:
//
//	observe.EnableMetrics(observe.WithNamespace("myapp"))
//	http.Handle("/metrics", promhttp.Handler())
//
// Traces wrap batches in spans:
//
//	observe.TracedBatch(ctx, "checkout", func() {
//	    cart.Set(nil)
//	    total.Set(0)
//	})
package observe
