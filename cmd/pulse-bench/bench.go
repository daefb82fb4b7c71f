package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

type profile struct {
	Name     string
	Duration time.Duration
	Width    int
	Depth    int
}

var profiles = map[string]profile{
	"fast": {
		Name:     "fast",
		Duration: 5 * time.Second,
		Width:    100,
		Depth:    10,
	},
	"standard": {
		Name:     "standard",
		Duration: 15 * time.Second,
		Width:    500,
		Depth:    50,
	},
	"stress": {
		Name:     "stress",
		Duration: 30 * time.Second,
		Width:    2000,
		Depth:    200,
	},
}

var shapes = []string{"diamond", "wide", "deep"}

type benchConfig struct {
	Profile    string
	Shape      string
	Duration   time.Duration
	Width      int
	Depth      int
	Batched    bool
	JSONOutput string
}

func newBenchCmd() *cobra.Command {
	var (
		profileFlag  string
		shapeFlag    string
		durationFlag time.Duration
		widthFlag    int
		depthFlag    int
		batchedFlag  bool
		jsonFlag     string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run propagation benchmarks against synthetic graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(strings.TrimSpace(profileFlag))
			base, ok := profiles[name]
			if !ok {
				return fmt.Errorf("unknown profile %q (want fast|standard|stress)", profileFlag)
			}

			shape := strings.ToLower(strings.TrimSpace(shapeFlag))
			if !validShape(shape) {
				return fmt.Errorf("unknown shape %q (want %s)", shapeFlag, strings.Join(shapes, "|"))
			}

			cfg := benchConfig{
				Profile:    base.Name,
				Shape:      shape,
				Duration:   base.Duration,
				Width:      base.Width,
				Depth:      base.Depth,
				Batched:    batchedFlag,
				JSONOutput: strings.TrimSpace(jsonFlag),
			}
			if durationFlag > 0 {
				cfg.Duration = durationFlag
			}
			if widthFlag > 0 {
				cfg.Width = widthFlag
			}
			if depthFlag > 0 {
				cfg.Depth = depthFlag
			}
			if cfg.JSONOutput == "" {
				cfg.JSONOutput = "-"
			}

			report := runBench(cfg)
			writeSummary(os.Stderr, report)
			return writeJSON(cfg.JSONOutput, report)
		},
	}

	cmd.Flags().StringVar(&profileFlag, "profile", "standard", "profile: fast|standard|stress")
	cmd.Flags().StringVar(&shapeFlag, "shape", "diamond", "graph shape: diamond|wide|deep")
	cmd.Flags().DurationVar(&durationFlag, "duration", 0, "override benchmark duration, e.g. 30s")
	cmd.Flags().IntVar(&widthFlag, "width", 0, "override graph width (nodes per layer)")
	cmd.Flags().IntVar(&depthFlag, "depth", 0, "override graph depth (chain length)")
	cmd.Flags().BoolVar(&batchedFlag, "batched", true, "wrap each update in a batch")
	cmd.Flags().StringVar(&jsonFlag, "json", "-", "JSON output path ('-' for stdout)")

	return cmd
}

func validShape(s string) bool {
	for _, known := range shapes {
		if s == known {
			return true
		}
	}
	return false
}

// benchGraph is a synthetic graph driven by one source signal. checksum
// forces every derived node to actually recompute.
type benchGraph struct {
	source   *pulse.Signal[int]
	sink     *pulse.Computed[int]
	nodes    int
	teardown []func()
}

func (g *benchGraph) dispose() {
	for i := len(g.teardown) - 1; i >= 0; i-- {
		g.teardown[i]()
	}
}

// buildGraph constructs the requested shape.
//
//	diamond: source fans out to width computeds, all joined by one sink.
//	wide:    same fan-out, but each branch also chains depth/10 nodes.
//	deep:    a single chain of depth computeds.
func buildGraph(cfg benchConfig) *benchGraph {
	g := &benchGraph{source: pulse.NewSignal(0)}

	switch cfg.Shape {
	case "deep":
		prev := pulse.NewComputed(func() int { return g.source.Get() + 1 })
		g.teardown = append(g.teardown, prev.Dispose)
		g.nodes = 1
		for i := 1; i < cfg.Depth; i++ {
			inner := prev
			next := pulse.NewComputed(func() int { return inner.Get() + 1 })
			g.teardown = append(g.teardown, next.Dispose)
			prev = next
			g.nodes++
		}
		g.sink = prev

	case "wide", "diamond":
		chain := 1
		if cfg.Shape == "wide" && cfg.Depth >= 10 {
			chain = cfg.Depth / 10
		}

		branches := make([]*pulse.Computed[int], cfg.Width)
		for i := range branches {
			offset := i
			node := pulse.NewComputed(func() int { return g.source.Get() + offset })
			g.teardown = append(g.teardown, node.Dispose)
			g.nodes++
			for j := 1; j < chain; j++ {
				inner := node
				node = pulse.NewComputed(func() int { return inner.Get() + 1 })
				g.teardown = append(g.teardown, node.Dispose)
				g.nodes++
			}
			branches[i] = node
		}

		g.sink = pulse.NewComputed(func() int {
			sum := 0
			for _, b := range branches {
				sum += b.Get()
			}
			return sum
		})
		g.teardown = append(g.teardown, g.sink.Dispose)
		g.nodes++
	}

	return g
}

func runBench(cfg benchConfig) benchReport {
	graph := buildGraph(cfg)
	defer graph.dispose()

	var effectRuns atomic.Uint64
	sink := graph.sink
	e := pulse.CreateEffect(func() pulse.Cleanup {
		_ = sink.Get()
		effectRuns.Add(1)
		return nil
	})
	defer e.Dispose()

	var recomputes, flushes atomic.Uint64
	pulse.SetHooks(&pulse.Hooks{
		OnComputedRecompute: func(uint64, time.Duration) { recomputes.Add(1) },
		OnBatchFlush:        func(int, int) { flushes.Add(1) },
	})
	defer pulse.SetHooks(nil)

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	var samples []time.Duration
	updates := 0
	checksum := 0

	start := time.Now()
	deadline := start.Add(cfg.Duration)
	for time.Now().Before(deadline) {
		updates++
		t0 := time.Now()
		if cfg.Batched {
			pulse.Batch(func() {
				graph.source.Set(updates)
			})
		} else {
			graph.source.Set(updates)
		}
		checksum += sink.Get()
		samples = append(samples, time.Since(t0))
	}
	elapsed := time.Since(start)

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	return buildReport(cfg, elapsed, updates, checksum, graph.nodes, samples,
		effectRuns.Load(), recomputes.Load(), flushes.Load(), before, after)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func us(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

type benchReport struct {
	Version    string         `json:"version"`
	Run        runInfo        `json:"run"`
	Workload   workloadInfo   `json:"workload"`
	LatencyUS  latencyInfo    `json:"latency_us"`
	Throughput throughputInfo `json:"throughput"`
	Engine     engineInfo     `json:"engine"`
	GC         gcInfo         `json:"gc"`
	Checksum   int            `json:"checksum"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
}

type workloadInfo struct {
	Profile    string `json:"profile"`
	Shape      string `json:"shape"`
	DurationMS int64  `json:"duration_ms"`
	Width      int    `json:"width"`
	Depth      int    `json:"depth"`
	Nodes      int    `json:"nodes"`
	Batched    bool   `json:"batched"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type throughputInfo struct {
	UpdatesTotal  int     `json:"updates_total"`
	UpdatesPerSec float64 `json:"updates_per_sec"`
}

type engineInfo struct {
	EffectRuns         uint64  `json:"effect_runs"`
	Recomputes         uint64  `json:"recomputes"`
	BatchFlushes       uint64  `json:"batch_flushes"`
	RecomputesPerWrite float64 `json:"recomputes_per_write"`
}

type gcInfo struct {
	AllocMB      float64 `json:"alloc_mb"`
	HeapLiveMB   float64 `json:"heap_live_mb"`
	NumGC        uint32  `json:"num_gc"`
	PauseTotalMS float64 `json:"pause_total_ms"`
}

func buildReport(
	cfg benchConfig,
	elapsed time.Duration,
	updates int,
	checksum int,
	nodes int,
	samples []time.Duration,
	effectRuns, recomputes, flushes uint64,
	before, after runtime.MemStats,
) benchReport {
	elapsedSeconds := math.Max(0.001, elapsed.Seconds())

	latency := latencyInfo{}
	if len(samples) > 0 {
		latency = latencyInfo{
			Min: us(samples[0]),
			P50: us(percentile(samples, 0.50)),
			P95: us(percentile(samples, 0.95)),
			P99: us(percentile(samples, 0.99)),
			Max: us(samples[len(samples)-1]),
		}
	}

	recomputesPerWrite := 0.0
	if updates > 0 {
		recomputesPerWrite = float64(recomputes) / float64(updates)
	}

	return benchReport{
		Version: "1",
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
		},
		Workload: workloadInfo{
			Profile:    cfg.Profile,
			Shape:      cfg.Shape,
			DurationMS: cfg.Duration.Milliseconds(),
			Width:      cfg.Width,
			Depth:      cfg.Depth,
			Nodes:      nodes,
			Batched:    cfg.Batched,
		},
		LatencyUS: latency,
		Throughput: throughputInfo{
			UpdatesTotal:  updates,
			UpdatesPerSec: float64(updates) / elapsedSeconds,
		},
		Engine: engineInfo{
			EffectRuns:         effectRuns,
			Recomputes:         recomputes,
			BatchFlushes:       flushes,
			RecomputesPerWrite: recomputesPerWrite,
		},
		GC: gcInfo{
			AllocMB:      float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			HeapLiveMB:   float64(after.HeapAlloc) / (1024 * 1024),
			NumGC:        after.NumGC - before.NumGC,
			PauseTotalMS: float64(after.PauseTotalNs-before.PauseTotalNs) / float64(time.Millisecond),
		},
		Checksum: checksum,
	}
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== Pulse Propagation Benchmark ===")
	fmt.Fprintf(w, "Profile: %s\n", report.Workload.Profile)
	fmt.Fprintf(w, "Shape: %s (%d nodes, width %d, depth %d)\n",
		report.Workload.Shape, report.Workload.Nodes, report.Workload.Width, report.Workload.Depth)
	fmt.Fprintf(w, "Duration: %s\n", time.Duration(report.Workload.DurationMS)*time.Millisecond)
	fmt.Fprintf(w, "Batched: %v\n", report.Workload.Batched)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Updates: %d (%.1f/s)\n", report.Throughput.UpdatesTotal, report.Throughput.UpdatesPerSec)
	fmt.Fprintf(w, "Recomputes: %d (%.2f per write)\n", report.Engine.Recomputes, report.Engine.RecomputesPerWrite)
	fmt.Fprintf(w, "Effect runs: %d\n", report.Engine.EffectRuns)
	fmt.Fprintf(w, "Batch flushes: %d\n", report.Engine.BatchFlushes)
	fmt.Fprintln(w)

	if report.LatencyUS.Max == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
	} else {
		fmt.Fprintln(w, "Update latency (write -> sink read):")
		fmt.Fprintf(w, "  min: %.2f us\n", report.LatencyUS.Min)
		fmt.Fprintf(w, "  p50: %.2f us\n", report.LatencyUS.P50)
		fmt.Fprintf(w, "  p95: %.2f us\n", report.LatencyUS.P95)
		fmt.Fprintf(w, "  p99: %.2f us\n", report.LatencyUS.P99)
		fmt.Fprintf(w, "  max: %.2f us\n", report.LatencyUS.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC (process-wide):")
	fmt.Fprintf(w, "  alloc:     %.2f MB\n", report.GC.AllocMB)
	fmt.Fprintf(w, "  heap_live: %.2f MB\n", report.GC.HeapLiveMB)
	fmt.Fprintf(w, "  num_gc:    %d\n", report.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (total)\n", report.GC.PauseTotalMS)
}

func writeJSON(path string, report benchReport) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
