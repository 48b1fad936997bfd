// Package metrics provides Prometheus collectors for the directory service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricVotesTotal          = "alumnirank_votes_total"
	MetricRatingChangesTotal  = "alumnirank_rating_changes_total"
	MetricPairSelectionsTotal = "alumnirank_pair_selections_total"
	MetricImportedProfiles    = "alumnirank_imported_profiles_total"
	MetricImportRejectedRows  = "alumnirank_import_rejected_rows_total"
	MetricSearchesTotal       = "alumnirank_searches_total"
	MetricStreamSubscribers   = "alumnirank_stream_subscribers"
)

// Vote outcome label values.
const (
	OutcomeDecisive = "decisive"
	OutcomeTie      = "tie"
	OutcomeReplayed = "replayed"
)

// Pair selection result label values.
const (
	PairServed  = "served"
	PairEmpty   = "empty"
	PairFailure = "failure"
)

// Metrics contains the Prometheus collectors. All operations are safe for
// concurrent use.
type Metrics struct {
	votesTotal          *prometheus.CounterVec
	ratingChangesTotal  prometheus.Counter
	pairSelectionsTotal *prometheus.CounterVec
	importedProfiles    prometheus.Counter
	importRejectedRows  prometheus.Counter
	searchesTotal       prometheus.Counter
	streamSubscribers   prometheus.Gauge
}

// New creates the collectors. They are not registered; call Register.
func New() *Metrics {
	return &Metrics{
		votesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricVotesTotal,
				Help: "Total number of recorded votes by outcome",
			},
			[]string{"outcome"},
		),
		ratingChangesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRatingChangesTotal,
				Help: "Total number of rating ledger entries written",
			},
		),
		pairSelectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricPairSelectionsTotal,
				Help: "Total number of pair selections by result",
			},
			[]string{"result"},
		),
		importedProfiles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricImportedProfiles,
				Help: "Total number of profiles created by CSV import",
			},
		),
		importRejectedRows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricImportRejectedRows,
				Help: "Total number of CSV rows rejected during import",
			},
		),
		searchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricSearchesTotal,
				Help: "Total number of directory searches executed",
			},
		),
		streamSubscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricStreamSubscribers,
				Help: "Number of connected live-update subscribers",
			},
		),
	}
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.votesTotal,
		m.ratingChangesTotal,
		m.pairSelectionsTotal,
		m.importedProfiles,
		m.importRejectedRows,
		m.searchesTotal,
		m.streamSubscribers,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) VoteRecorded(outcome string) { m.votesTotal.WithLabelValues(outcome).Inc() }
func (m *Metrics) RatingChanges(n int)         { m.ratingChangesTotal.Add(float64(n)) }
func (m *Metrics) PairSelection(result string) { m.pairSelectionsTotal.WithLabelValues(result).Inc() }
func (m *Metrics) ProfilesImported(n int)      { m.importedProfiles.Add(float64(n)) }
func (m *Metrics) ImportRowsRejected(n int)    { m.importRejectedRows.Add(float64(n)) }
func (m *Metrics) SearchExecuted()             { m.searchesTotal.Inc() }
func (m *Metrics) StreamSubscriberConnected()  { m.streamSubscribers.Inc() }
func (m *Metrics) StreamSubscriberDisconnected() { m.streamSubscribers.Dec() }
