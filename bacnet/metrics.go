package bacnet

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Counter is a thread-safe counter
type Counter struct {
	value int64
}

// Add adds a delta to the counter
func (c *Counter) Add(delta int64) {
	atomic.AddInt64(&c.value, delta)
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.Add(1)
}

// Value returns the current counter value
func (c *Counter) Value() int64 {
	return atomic.LoadInt64(&c.value)
}

// Reset resets the counter to 0
func (c *Counter) Reset() {
	atomic.StoreInt64(&c.value, 0)
}

// Gauge is a thread-safe gauge that can go up and down
type Gauge struct {
	value int64
}

// Set sets the gauge value
func (g *Gauge) Set(value int64) {
	atomic.StoreInt64(&g.value, value)
}

// Inc increments the gauge by 1
func (g *Gauge) Inc() {
	atomic.AddInt64(&g.value, 1)
}

// Dec decrements the gauge by 1
func (g *Gauge) Dec() {
	atomic.AddInt64(&g.value, -1)
}

// Value returns the current gauge value
func (g *Gauge) Value() int64 {
	return atomic.LoadInt64(&g.value)
}

// latencyBounds are the upper bounds of the dispatch latency buckets; the
// last bucket collects everything above.
var latencyBounds = []time.Duration{
	time.Microsecond,
	10 * time.Microsecond,
	100 * time.Microsecond,
	time.Millisecond,
	10 * time.Millisecond,
}

// LatencyHistogram tracks dispatch latency
type LatencyHistogram struct {
	mu      sync.Mutex
	count   int64
	sum     time.Duration
	min     time.Duration
	max     time.Duration
	buckets []int64
}

// NewLatencyHistogram creates a new latency histogram
func NewLatencyHistogram() *LatencyHistogram {
	return &LatencyHistogram{
		min:     -1,
		buckets: make([]int64, len(latencyBounds)+1),
	}
}

// Record records a latency measurement
func (h *LatencyHistogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.count++
	h.sum += d
	if h.min < 0 || d < h.min {
		h.min = d
	}
	if d > h.max {
		h.max = d
	}

	i := 0
	for i < len(latencyBounds) && d >= latencyBounds[i] {
		i++
	}
	h.buckets[i]++
}

// Stats returns histogram statistics
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := LatencyStats{
		Count:   h.count,
		Buckets: append([]int64(nil), h.buckets...),
	}
	if h.count > 0 {
		stats.Min = h.min
		stats.Max = h.max
		stats.Avg = h.sum / time.Duration(h.count)
	}
	return stats
}

// Reset resets the histogram
func (h *LatencyHistogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.count = 0
	h.sum = 0
	h.min = -1
	h.max = 0
	for i := range h.buckets {
		h.buckets[i] = 0
	}
}

// LatencyStats contains latency statistics
type LatencyStats struct {
	Count   int64
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Buckets []int64
}

// Metrics holds property dispatch metrics of a Device
type Metrics struct {
	// Reads
	ReadsServed Counter
	ReadsFailed Counter

	// Writes
	WritesAccepted Counter
	WritesRejected Counter

	// Rejections by kind
	UnknownObject   Counter
	UnknownProperty Counter
	InvalidType     Counter
	NotWritable     Counter
	OversizeData    Counter
	ValueTooLong    Counter
	DuplicateName   Counter

	// Directory
	ObjectsAdded   Counter
	ObjectsRemoved Counter
	Objects        Gauge

	// Latency
	DispatchLatency *LatencyHistogram

	startTime time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		DispatchLatency: NewLatencyHistogram(),
		startTime:       time.Now(),
	}
}

// recordError bumps the counter matching the error kind.
func (m *Metrics) recordError(err error) {
	switch {
	case errors.Is(err, ErrUnknownObject):
		m.UnknownObject.Inc()
	case errors.Is(err, ErrUnknownProperty):
		m.UnknownProperty.Inc()
	case errors.Is(err, ErrInvalidPropertyType):
		m.InvalidType.Inc()
	case errors.Is(err, ErrPropertyNotWritable):
		m.NotWritable.Inc()
	case errors.Is(err, ErrOversizeData):
		m.OversizeData.Inc()
	case errors.Is(err, ErrValueTooLong):
		m.ValueTooLong.Inc()
	case errors.Is(err, ErrDuplicateName):
		m.DuplicateName.Inc()
	}
}

// Uptime returns the time since metrics started
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Snapshot returns a snapshot of current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Uptime: m.Uptime(),

		ReadsServed:    m.ReadsServed.Value(),
		ReadsFailed:    m.ReadsFailed.Value(),
		WritesAccepted: m.WritesAccepted.Value(),
		WritesRejected: m.WritesRejected.Value(),

		UnknownObject:   m.UnknownObject.Value(),
		UnknownProperty: m.UnknownProperty.Value(),
		InvalidType:     m.InvalidType.Value(),
		NotWritable:     m.NotWritable.Value(),
		OversizeData:    m.OversizeData.Value(),
		ValueTooLong:    m.ValueTooLong.Value(),
		DuplicateName:   m.DuplicateName.Value(),

		ObjectsAdded:   m.ObjectsAdded.Value(),
		ObjectsRemoved: m.ObjectsRemoved.Value(),
		Objects:        m.Objects.Value(),

		LatencyStats: m.DispatchLatency.Stats(),
	}
}

// MetricsSnapshot is a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	Uptime time.Duration

	ReadsServed    int64
	ReadsFailed    int64
	WritesAccepted int64
	WritesRejected int64

	UnknownObject   int64
	UnknownProperty int64
	InvalidType     int64
	NotWritable     int64
	OversizeData    int64
	ValueTooLong    int64
	DuplicateName   int64

	ObjectsAdded   int64
	ObjectsRemoved int64
	Objects        int64

	LatencyStats LatencyStats
}
