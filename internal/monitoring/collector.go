// Package monitoring keeps per-route request statistics and can ship raw
// request samples to MongoDB.
package monitoring

import (
	"sort"
	"sync"
	"time"
)

// RouteStats is the aggregate for one method and route template.
type RouteStats struct {
	Route     string  `json:"route"`
	Count     int64   `json:"count"`
	Errors    int64   `json:"errors"`
	TotalMs   float64 `json:"totalMs"`
	MaxMs     float64 `json:"maxMs"`
	AverageMs float64 `json:"averageMs"`
}

// Sample is one observed request.
type Sample struct {
	RequestID string    `json:"requestId" bson:"requestId"`
	Method    string    `json:"method" bson:"method"`
	Route     string    `json:"route" bson:"route"`
	Status    int       `json:"status" bson:"status"`
	LatencyMs float64   `json:"latencyMs" bson:"latencyMs"`
	User      string    `json:"user,omitempty" bson:"user,omitempty"`
	At        time.Time `json:"at" bson:"at"`
}

// Sink receives samples. Enqueue must not block.
type Sink interface {
	Enqueue(Sample)
}

type Collector struct {
	mu      sync.Mutex
	routes  map[string]*RouteStats
	started time.Time
	sink    Sink
}

// NewCollector creates a collector. sink may be nil.
func NewCollector(sink Sink) *Collector {
	return &Collector{routes: make(map[string]*RouteStats), started: time.Now(), sink: sink}
}

// Record adds one request to the route aggregate and forwards it to the sink.
func (c *Collector) Record(s Sample) {
	key := s.Method + " " + s.Route
	c.mu.Lock()
	st, ok := c.routes[key]
	if !ok {
		st = &RouteStats{Route: key}
		c.routes[key] = st
	}
	st.Count++
	if s.Status >= 500 {
		st.Errors++
	}
	st.TotalMs += s.LatencyMs
	if s.LatencyMs > st.MaxMs {
		st.MaxMs = s.LatencyMs
	}
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.Enqueue(s)
	}
}

// Snapshot returns a copy of every aggregate, sorted by route.
func (c *Collector) Snapshot() []RouteStats {
	c.mu.Lock()
	out := make([]RouteStats, 0, len(c.routes))
	for _, st := range c.routes {
		cp := *st
		if cp.Count > 0 {
			cp.AverageMs = cp.TotalMs / float64(cp.Count)
		}
		out = append(out, cp)
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

func (c *Collector) Uptime() time.Duration { return time.Since(c.started) }
