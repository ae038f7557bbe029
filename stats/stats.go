/*
Package stats counts converted elements and written rows.
*/
package stats

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/omniscale/osmcsv/log"
)

// Counts contains the totals of a conversion.
type Counts struct {
	Nodes       int64
	Ways        int64
	Skipped     int64
	DroppedTags int64
	// Rows per table name.
	Rows map[string]int64
	// Cleaned values per cleaner and how many of them were changed.
	Cleaned map[string]int64
	Changed map[string]int64
}

// Stats collects the counts of a conversion as Prometheus metrics.
type Stats struct {
	registry    *prometheus.Registry
	elements    *prometheus.CounterVec
	rows        *prometheus.CounterVec
	droppedTags prometheus.Counter
	cleaned     *prometheus.CounterVec

	mu             sync.Mutex
	counts         Counts
	start          time.Time
	lastReport     time.Time
	reportInterval time.Duration
}

func New() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		elements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmcsv_elements_total",
				Help: "Total number of OSM elements read, by kind",
			},
			[]string{"kind"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmcsv_rows_total",
				Help: "Total number of rows written, by table",
			},
			[]string{"table"},
		),
		droppedTags: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "osmcsv_dropped_tags_total",
				Help: "Total number of tags dropped because of problematic keys",
			},
		),
		cleaned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmcsv_cleaned_values_total",
				Help: "Total number of tag values passed to a cleaner, by cleaner and result",
			},
			[]string{"cleaner", "changed"},
		),
		counts: Counts{
			Rows:    make(map[string]int64),
			Cleaned: make(map[string]int64),
			Changed: make(map[string]int64),
		},
		start:          time.Now(),
		reportInterval: time.Second,
	}
	s.lastReport = s.start
	s.registry.MustRegister(s.elements, s.rows, s.droppedTags, s.cleaned)
	return s
}

// Registry returns the registry with all metrics of s.
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Stats) AddNode() {
	s.elements.WithLabelValues("node").Inc()
	s.mu.Lock()
	s.counts.Nodes++
	s.mu.Unlock()
	s.progress()
}

func (s *Stats) AddWay() {
	s.elements.WithLabelValues("way").Inc()
	s.mu.Lock()
	s.counts.Ways++
	s.mu.Unlock()
	s.progress()
}

// AddSkipped counts n elements that are neither nodes nor ways.
func (s *Stats) AddSkipped(n int64) {
	if n <= 0 {
		return
	}
	s.elements.WithLabelValues("other").Add(float64(n))
	s.mu.Lock()
	s.counts.Skipped += n
	s.mu.Unlock()
}

func (s *Stats) AddRows(table string, n int) {
	if n == 0 {
		return
	}
	s.rows.WithLabelValues(table).Add(float64(n))
	s.mu.Lock()
	s.counts.Rows[table] += int64(n)
	s.mu.Unlock()
}

// DroppedTag implements shape.Observer.
func (s *Stats) DroppedTag(key string) {
	s.droppedTags.Inc()
	s.mu.Lock()
	s.counts.DroppedTags++
	s.mu.Unlock()
	log.Printf("[debug] dropped tag %q", key)
}

// CleanedValue implements shape.Observer.
func (s *Stats) CleanedValue(cleaner string, changed bool) {
	label := "false"
	if changed {
		label = "true"
	}
	s.cleaned.WithLabelValues(cleaner, label).Inc()
	s.mu.Lock()
	s.counts.Cleaned[cleaner]++
	if changed {
		s.counts.Changed[cleaner]++
	}
	s.mu.Unlock()
}

// Counts returns a copy of the current counts.
func (s *Stats) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counts
	c.Rows = copyMap(s.counts.Rows)
	c.Cleaned = copyMap(s.counts.Cleaned)
	c.Changed = copyMap(s.counts.Changed)
	return c
}

// Duration returns the time since New.
func (s *Stats) Duration() time.Duration {
	return time.Since(s.start)
}

// WriteTextfile writes all metrics in the text format of the node
// exporter textfile collector.
func (s *Stats) WriteTextfile(fname string) error {
	return prometheus.WriteToTextfile(fname, s.registry)
}

func (s *Stats) progress() {
	s.mu.Lock()
	now := time.Now()
	if now.Sub(s.lastReport) < s.reportInterval {
		s.mu.Unlock()
		return
	}
	s.lastReport = now
	nodes, ways := s.counts.Nodes, s.counts.Ways
	s.mu.Unlock()

	dur := now.Sub(s.start).Seconds()
	log.Printf("[progress] Nodes: %7d/s (%10d) Ways: %7d/s (%9d)",
		int64(float64(nodes)/dur), nodes,
		int64(float64(ways)/dur), ways,
	)
}

func copyMap(m map[string]int64) map[string]int64 {
	c := make(map[string]int64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
