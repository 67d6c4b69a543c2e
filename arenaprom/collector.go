// Package arenaprom exports arena metrics to Prometheus.
package arenaprom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pavanmanishd/slabarena"
)

// ArenaSource is implemented by *slabarena.Arena.
type ArenaSource interface {
	Metrics() slabarena.ArenaMetrics
}

// SyncArenaSource is implemented by *slabarena.SyncArena.
type SyncArenaSource interface {
	Metrics() slabarena.SyncArenaMetrics
}

// Collector is a prometheus.Collector reporting the state of one arena.
//
// A Collector over an *slabarena.Arena reads the arena without locking, so
// it must only be gathered from the goroutine that owns the arena. A
// Collector over an *slabarena.SyncArena can be gathered at any time.
type Collector struct {
	metrics func() slabarena.SyncArenaMetrics

	sizeInUse   *prometheus.Desc
	capacity    *prometheus.Desc
	slabs       *prometheus.Desc
	utilization *prometheus.Desc
	acquired    *prometheus.Desc
	rechecks    *prometheus.Desc
}

// NewCollector returns a Collector for an exclusive arena.
func NewCollector(namespace string, labels prometheus.Labels, a ArenaSource) *Collector {
	return newCollector(namespace, labels, func() slabarena.SyncArenaMetrics {
		m := a.Metrics()
		// Every slab of an exclusive arena stays in its chain.
		return slabarena.SyncArenaMetrics{ArenaMetrics: m, SlabsAcquired: uint64(m.NumSlabs)}
	})
}

// NewSyncCollector returns a Collector for a shared arena, including its
// slow-path counters.
func NewSyncCollector(namespace string, labels prometheus.Labels, s SyncArenaSource) *Collector {
	return newCollector(namespace, labels, s.Metrics)
}

func newCollector(namespace string, labels prometheus.Labels, metrics func() slabarena.SyncArenaMetrics) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "arena", name), help, nil, labels)
	}
	return &Collector{
		metrics:     metrics,
		sizeInUse:   desc("bytes_in_use", "Bytes handed out from the arena's slabs, alignment padding included."),
		capacity:    desc("capacity_bytes", "Total size of all slabs held by the arena."),
		slabs:       desc("slabs", "Number of slabs held by the arena."),
		utilization: desc("utilization_ratio", "Ratio of bytes in use to capacity."),
		acquired:    desc("slabs_acquired_total", "Slabs obtained from the slab source."),
		rechecks:    desc("slow_path_recheck_hits_total", "Slow-path allocations served by a slab installed by another goroutine."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sizeInUse
	ch <- c.capacity
	ch <- c.slabs
	ch <- c.utilization
	ch <- c.acquired
	ch <- c.rechecks
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.metrics()
	ch <- prometheus.MustNewConstMetric(c.sizeInUse, prometheus.GaugeValue, float64(m.SizeInUse))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(m.Capacity))
	ch <- prometheus.MustNewConstMetric(c.slabs, prometheus.GaugeValue, float64(m.NumSlabs))
	ch <- prometheus.MustNewConstMetric(c.utilization, prometheus.GaugeValue, m.Utilization)
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.CounterValue, float64(m.SlabsAcquired))
	ch <- prometheus.MustNewConstMetric(c.rechecks, prometheus.CounterValue, float64(m.RecheckHits))
}
