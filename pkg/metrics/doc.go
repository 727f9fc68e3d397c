/*
Package metrics exposes Prometheus instrumentation for the indexing and
query pipeline: document/field/facet-node gauges per index, indexing-phase
and search-latency histograms, and counters for merge run files, facet
splits/collapses and reindex runs.

Collector polls a caller-supplied set of StatsSource implementations (one
per open index) on a fixed interval and republishes their sizes as gauges,
so the metrics package never imports the engine package directly. Handler
returns the standard promhttp scrape handler for embedding into whatever
HTTP surface the caller builds on top of this library.
*/
package metrics
