package metrics

import "time"

// StatsSource is implemented by an open index so the collector can poll its
// size without the metrics package importing the engine package.
type StatsSource interface {
	IndexUID() string
	DocumentCount() (int, error)
	FieldCount() (int, error)
	FacetNodeCounts() (map[string]int, error)
}

// Collector periodically samples one or more indexes and publishes their
// sizes as gauges.
type Collector struct {
	sources func() []StatsSource
	stopCh  chan struct{}
}

// NewCollector creates a new metrics collector. sources is called on every
// tick so newly opened or closed indexes are picked up automatically.
func NewCollector(sources func() []StatsSource) *Collector {
	return &Collector{
		sources: sources,
		stopCh:  make(chan struct{}),
	}
}

// Start begins collecting metrics every 15 seconds.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	for _, src := range c.sources() {
		uid := src.IndexUID()

		if n, err := src.DocumentCount(); err == nil {
			DocumentsTotal.WithLabelValues(uid).Set(float64(n))
		}
		if n, err := src.FieldCount(); err == nil {
			FieldsTotal.WithLabelValues(uid).Set(float64(n))
		}
		if counts, err := src.FacetNodeCounts(); err == nil {
			for field, n := range counts {
				FacetNodesTotal.WithLabelValues(uid, field).Set(float64(n))
			}
		}
	}
}
