// Package profiler - Per-stage timing of the detection pipeline.
package profiler

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Stage names recorded by the pipeline.
const (
	StagePredict     = "predict"
	StagePostProcess = "postprocess"
	StageRender      = "render"
	StageFrame       = "frame"
)

// Stats summarizes the timings of one operation.
type Stats struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
}

// Mean returns the average duration, or 0 when nothing was recorded.
func (s Stats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Profiler accumulates operation timings. It is safe for concurrent use. A nil
// *Profiler records nothing.
type Profiler struct {
	mu         sync.Mutex
	startTime  time.Time
	operations map[string]*Stats
}

// New creates a profiler.
func New() *Profiler {
	return &Profiler{
		startTime:  time.Now(),
		operations: make(map[string]*Stats),
	}
}

// StartOperation starts timing an operation.
//
// Arguments:
//   - name: The operation name.
//
// Returns:
//   - A function to call when the operation completes.
func (p *Profiler) StartOperation(name string) func() {
	if p == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one duration to an operation.
func (p *Profiler) Record(name string, d time.Duration) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.operations[name]
	if !ok {
		s = &Stats{Name: name, Min: d, Max: d}
		p.operations[name] = s
	}
	s.Count++
	s.Total += d
	if d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
}

// Stats returns the timings of every operation, sorted by name.
func (p *Profiler) Stats() []Stats {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Stats, 0, len(p.operations))
	for _, s := range p.operations {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report logs one line per operation.
func (p *Profiler) Report(log logrus.FieldLogger) {
	if p == nil {
		return
	}

	uptime := time.Since(p.startTime).Truncate(time.Millisecond)
	for _, s := range p.Stats() {
		log.WithFields(logrus.Fields{
			"operation": s.Name,
			"count":     s.Count,
			"avg":       s.Mean(),
			"min":       s.Min,
			"max":       s.Max,
			"uptime":    uptime,
		}).Info("operation timings")
	}
}
