// Package prometheus exports parser metrics through the Prometheus client.
//
// A Collector implements fastq.MetricsCollector and can be passed to
// fastq.WithMetricsCollector:
//
//	reg := prom.NewRegistry()
//	c, err := prometheus.NewCollector(reg, "fastq")
//	coord, err := fastq.NewCoordinator(pcfg, cfg, fastq.WithMetricsCollector(c))
package prometheus
