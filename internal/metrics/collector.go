package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/ovenledger/internal/ledger"
)

// Source is the ledger state read at scrape time.
type Source interface {
	View() ledger.View
}

var (
	inOvenDesc = prometheus.NewDesc(
		"ovenledger_in_oven_cylinders",
		"Cylinders currently in each oven",
		[]string{"oven"}, nil,
	)
	overdueDesc = prometheus.NewDesc(
		"ovenledger_overdue_cylinders",
		"In-oven cylinders past their estimated duration",
		nil, nil,
	)
	unloadedDesc = prometheus.NewDesc(
		"ovenledger_unloaded_cylinders",
		"Cylinders in the export projection",
		nil, nil,
	)
)

// Collector reports ledger gauges computed from a fresh View per scrape.
type Collector struct {
	source Source
}

// NewCollector returns a Collector reading from source.
func NewCollector(source Source) *Collector {
	return &Collector{source: source}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- inOvenDesc
	ch <- overdueDesc
	ch <- unloadedDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	v := c.source.View()
	for _, row := range v.Summary {
		ch <- prometheus.MustNewConstMetric(inOvenDesc, prometheus.GaugeValue, float64(row.Count), row.OvenNumber)
	}
	ch <- prometheus.MustNewConstMetric(overdueDesc, prometheus.GaugeValue, float64(v.Overdue()))
	ch <- prometheus.MustNewConstMetric(unloadedDesc, prometheus.GaugeValue, float64(v.Unloaded))
}
