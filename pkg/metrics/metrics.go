// Package metrics keeps process-wide counters for the live runtime and the
// contact pipeline, and serves them in the Prometheus text format.
package metrics

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Submission outcomes used as the result label.
const (
	SubmissionDelivered = "delivered"
	SubmissionFailed    = "failed"
	SubmissionInvalid   = "invalid"
)

// Metrics holds all application metrics.
type Metrics struct {
	namespace string

	// Connections
	ConnectionsActive *Gauge
	ConnectionsTotal  *Counter

	// Messages by protocol type (join, event, heartbeat, ...)
	MessagesReceived *CounterVec
	ErrorsTotal      *CounterVec

	// Renders
	RenderCount    *Counter
	RenderDuration *Histogram
	DiffSize       *Histogram

	// Contact form outcomes
	Submissions *CounterVec
}

// NewMetrics creates a metrics set whose names start with namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		namespace: namespace,

		ConnectionsActive: NewGauge("connections_active", "Open live connections"),
		ConnectionsTotal:  NewCounter("connections_total", "Live connections established"),

		MessagesReceived: NewCounterVec("messages_received_total", "Client messages received", "type"),
		ErrorsTotal:      NewCounterVec("errors_total", "Component handler failures", "stage"),

		RenderCount:    NewCounter("renders_total", "Diff renders"),
		RenderDuration: NewHistogram("render_duration_seconds", "Render duration"),
		DiffSize:       NewHistogram("diff_size_bytes", "Diff payload size"),

		Submissions: NewCounterVec("contact_submissions_total", "Contact form submissions", "result"),
	}
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		m.WriteTo(w)
	})
}

// WriteTo writes every metric to w.
func (m *Metrics) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	m.writeValue(cw, "gauge", m.ConnectionsActive.name, m.ConnectionsActive.help, m.ConnectionsActive.Value())
	m.writeValue(cw, "counter", m.ConnectionsTotal.name, m.ConnectionsTotal.help, m.ConnectionsTotal.Value())
	m.writeVec(cw, m.MessagesReceived)
	m.writeVec(cw, m.ErrorsTotal)
	m.writeValue(cw, "counter", m.RenderCount.name, m.RenderCount.help, m.RenderCount.Value())
	m.writeHistogram(cw, m.RenderDuration)
	m.writeHistogram(cw, m.DiffSize)
	m.writeVec(cw, m.Submissions)

	return cw.n, cw.err
}

func (m *Metrics) fullName(name string) string {
	if m.namespace == "" {
		return name
	}
	return m.namespace + "_" + name
}

func (m *Metrics) writeValue(w io.Writer, kind, name, help string, value float64) {
	name = m.fullName(name)
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %g\n", name, help, name, kind, name, value)
}

func (m *Metrics) writeVec(w io.Writer, cv *CounterVec) {
	name := m.fullName(cv.name)
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", name, cv.help, name)

	values := cv.Values()
	labels := make([]string, 0, len(values))
	for l := range values {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(w, "%s{%s=%q} %g\n", name, cv.label, l, values[l])
	}
}

func (m *Metrics) writeHistogram(w io.Writer, h *Histogram) {
	name := m.fullName(h.name)
	stats := h.Stats()
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s summary\n", name, h.help, name)
	fmt.Fprintf(w, "%s_sum %g\n%s_count %d\n", name, stats.Sum, name, stats.Count)
	if stats.Count > 0 {
		fmt.Fprintf(w, "%s_min %g\n%s_max %g\n", name, stats.Min, name, stats.Max)
	}
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name  string
	help  string
	value atomic.Int64
}

// NewCounter creates a new counter.
func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Add adds a non-negative delta.
func (c *Counter) Add(delta int64) {
	if delta > 0 {
		c.value.Add(delta)
	}
}

// Value returns the current counter value.
func (c *Counter) Value() float64 {
	return float64(c.value.Load())
}

// Gauge is a value that can go up and down.
type Gauge struct {
	name  string
	help  string
	value atomic.Int64
}

// NewGauge creates a new gauge.
func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

// Set sets the gauge to a value.
func (g *Gauge) Set(value int64) {
	g.value.Store(value)
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() {
	g.value.Add(1)
}

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() {
	g.value.Add(-1)
}

// Value returns the current gauge value.
func (g *Gauge) Value() float64 {
	return float64(g.value.Load())
}

// CounterVec is a counter with a single label. Label values must come from
// a small fixed set, never from client input.
type CounterVec struct {
	name   string
	help   string
	label  string
	values map[string]*Counter
	mu     sync.RWMutex
}

// NewCounterVec creates a new counter vector.
func NewCounterVec(name, help, label string) *CounterVec {
	return &CounterVec{
		name:   name,
		help:   help,
		label:  label,
		values: make(map[string]*Counter),
	}
}

// WithLabel returns the counter for the given label value.
func (cv *CounterVec) WithLabel(value string) *Counter {
	cv.mu.RLock()
	c, ok := cv.values[value]
	cv.mu.RUnlock()
	if ok {
		return c
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if c, ok := cv.values[value]; ok {
		return c
	}
	c = NewCounter(cv.name, cv.help)
	cv.values[value] = c
	return c
}

// Inc increments the counter for the given label.
func (cv *CounterVec) Inc(label string) {
	cv.WithLabel(label).Inc()
}

// Values returns all counter values.
func (cv *CounterVec) Values() map[string]float64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	result := make(map[string]float64, len(cv.values))
	for label, counter := range cv.values {
		result[label] = counter.Value()
	}
	return result
}

// Histogram tracks count, sum and range of observed values.
type Histogram struct {
	name  string
	help  string
	sum   float64
	count int64
	min   float64
	max   float64
	mu    sync.Mutex
}

// NewHistogram creates a new histogram.
func NewHistogram(name, help string) *Histogram {
	return &Histogram{
		name: name,
		help: help,
		min:  math.Inf(1),
		max:  math.Inf(-1),
	}
}

// Observe records a value.
func (h *Histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += value
	h.count++
	h.min = math.Min(h.min, value)
	h.max = math.Max(h.max, value)
}

// ObserveDuration records a duration value in seconds.
func (h *Histogram) ObserveDuration(d time.Duration) {
	h.Observe(d.Seconds())
}

// Stats returns histogram statistics.
func (h *Histogram) Stats() HistogramStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := HistogramStats{Count: h.count, Sum: h.sum}
	if h.count > 0 {
		stats.Min = h.min
		stats.Max = h.max
		stats.Avg = h.sum / float64(h.count)
	}
	return stats
}

// HistogramStats contains histogram statistics.
type HistogramStats struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Avg   float64
}

// Default is the process-wide metrics set.
var Default = NewMetrics("livefolio")

func ConnectionOpened() {
	Default.ConnectionsActive.Inc()
	Default.ConnectionsTotal.Inc()
}

func ConnectionClosed() {
	Default.ConnectionsActive.Dec()
}

func MessageReceived(msgType string) {
	Default.MessagesReceived.Inc(msgType)
}

func RecordError(stage string) {
	Default.ErrorsTotal.Inc(stage)
}

func RecordRender(duration time.Duration, diffSize int) {
	Default.RenderCount.Inc()
	Default.RenderDuration.ObserveDuration(duration)
	Default.DiffSize.Observe(float64(diffSize))
}

func SubmissionResolved(result string) {
	Default.Submissions.Inc(result)
}
