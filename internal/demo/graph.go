package demo

import (
	"fmt"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

// Graph is the reactive state behind the demo server: two writable
// inputs, two derived values, and a revision counter bumped on every
// broadcast so clients can detect missed frames.
type Graph struct {
	Clicks   *pulse.IntSignal
	StepSize *pulse.Signal[int]
	Enabled  *pulse.BoolSignal

	Total *pulse.Computed[int]
	Label *pulse.Computed[string]

	revision *pulse.IntSignal
}

// NewGraph builds the demo graph.
func NewGraph() *Graph {
	g := &Graph{
		Clicks:   pulse.NewIntSignal(0),
		StepSize: pulse.NewSignal(1),
		Enabled:  pulse.NewBoolSignal(true),
		revision: pulse.NewIntSignal(0),
	}

	g.Total = pulse.NewComputed(func() int {
		if !g.Enabled.Get() {
			return 0
		}
		return g.Clicks.Get() * g.StepSize.Get()
	})

	g.Label = pulse.NewComputed(func() string {
		if !g.Enabled.Get() {
			return "paused"
		}
		return fmt.Sprintf("%d clicks x %d", g.Clicks.Get(), g.StepSize.Get())
	})

	return g
}

// Snapshot is the wire representation sent to WebSocket clients and
// returned by the REST endpoint.
type Snapshot struct {
	Clicks   int    `json:"clicks"`
	StepSize int    `json:"step_size"`
	Enabled  bool   `json:"enabled"`
	Total    int    `json:"total"`
	Label    string `json:"label"`
	Revision int    `json:"revision"`
}

// Snapshot reads the whole graph. Called from inside the broadcast
// effect, so every read registers as a dependency.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Clicks:   g.Clicks.Get(),
		StepSize: g.StepSize.Get(),
		Enabled:  g.Enabled.Get(),
		Total:    g.Total.Get(),
		Label:    g.Label.Get(),
		Revision: g.revision.Peek(),
	}
}

// Click records one click. Total applies the step, so Clicks stays a
// plain click count. Both writes land in one batch so subscribers see a
// single update.
func (g *Graph) Click() {
	pulse.Batch(func() {
		g.Clicks.Inc()
		g.revision.Inc()
	})
}

// SetStep changes the increment applied per click.
func (g *Graph) SetStep(n int) {
	pulse.Batch(func() {
		g.StepSize.Set(n)
		g.revision.Inc()
	})
}

// Toggle pauses or resumes the derived values.
func (g *Graph) Toggle() {
	pulse.Batch(func() {
		g.Enabled.Toggle()
		g.revision.Inc()
	})
}

// Reset returns the graph to its initial state in one batch.
func (g *Graph) Reset() {
	pulse.Batch(func() {
		g.Clicks.Set(0)
		g.StepSize.Set(1)
		g.Enabled.SetTrue()
		g.revision.Inc()
	})
}
