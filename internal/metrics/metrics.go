package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the import counters. A nil *Metrics is a no-op.
type Metrics struct {
	// Row metrics
	RowsRead   *prometheus.CounterVec
	RowErrors  *prometheus.CounterVec
	ImportTime prometheus.Histogram

	// Transaction metrics
	Transactions *prometheus.CounterVec
	Matches      *prometheus.CounterVec
	Committed    prometheus.Counter
	RolledBack   prometheus.Counter

	// Catalog metrics
	CatalogAccounts prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers all import metrics on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers all import metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RowsRead: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerimport_rows_total",
				Help: "CSV rows read by outcome",
			},
			[]string{"outcome"},
		),
		RowErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerimport_row_errors_total",
				Help: "Rejected CSV rows by error kind",
			},
			[]string{"kind"},
		),
		ImportTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgerimport_import_duration_seconds",
			Help:    "Duration of import runs",
			Buckets: prometheus.DefBuckets,
		}),
		Transactions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerimport_transactions_total",
				Help: "Built transactions by result",
			},
			[]string{"result"},
		),
		Matches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerimport_matches_total",
				Help: "Counter-account matches by result",
			},
			[]string{"result"},
		),
		Committed: f.NewCounter(prometheus.CounterOpts{
			Name: "ledgerimport_committed_total",
			Help: "Transactions written to the ledger",
		}),
		RolledBack: f.NewCounter(prometheus.CounterOpts{
			Name: "ledgerimport_rolled_back_total",
			Help: "Transactions removed after a failed commit",
		}),
		CatalogAccounts: f.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerimport_catalog_accounts",
			Help: "Accounts in the loaded catalog",
		}),
		gatherer: reg,
	}
}

// Row counts one read row with outcome read, ignored, blank or error.
func (m *Metrics) Row(outcome string) {
	if m == nil {
		return
	}
	m.RowsRead.WithLabelValues(outcome).Inc()
}

// RowError counts one rejected row.
func (m *Metrics) RowError(kind string) {
	if m == nil {
		return
	}
	m.RowsRead.WithLabelValues("error").Inc()
	m.RowErrors.WithLabelValues(kind).Inc()
}

// Transaction counts a built transaction as accepted or duplicate.
func (m *Metrics) Transaction(result string) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(result).Inc()
}

// Match counts a matcher call as auto or uncategorized.
func (m *Metrics) Match(matched bool) {
	if m == nil {
		return
	}
	result := "uncategorized"
	if matched {
		result = "auto"
	}
	m.Matches.WithLabelValues(result).Inc()
}

// Catalog records the size of the loaded account catalog.
func (m *Metrics) Catalog(n int) {
	if m == nil {
		return
	}
	m.CatalogAccounts.Set(float64(n))
}

// ObserveImport records the duration of one run in seconds.
func (m *Metrics) ObserveImport(seconds float64) {
	if m == nil {
		return
	}
	m.ImportTime.Observe(seconds)
}

// Commit counts written and rolled-back transactions.
func (m *Metrics) Commit(written, rolledBack int) {
	if m == nil {
		return
	}
	m.Committed.Add(float64(written))
	m.RolledBack.Add(float64(rolledBack))
}

// WriteTextfile writes all metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
