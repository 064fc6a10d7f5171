package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for dataset reads and the API.
type Metrics struct {
	FilesRead       prometheus.Counter
	RecordsRead     prometheus.Counter
	IDParseFailures *prometheus.CounterVec
	RowsCopied      prometheus.Counter
	Requests        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FilesRead: f.NewCounter(prometheus.CounterOpts{
			Name: "population_dataset_files_read_total",
			Help: "Dataset files read to completion",
		}),
		RecordsRead: f.NewCounter(prometheus.CounterOpts{
			Name: "population_records_read_total",
			Help: "Person records read from the dataset",
		}),
		IDParseFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "population_id_parse_failures_total",
			Help: "Id columns that failed to parse, by column",
		}, []string{"column"}),
		RowsCopied: f.NewCounter(prometheus.CounterOpts{
			Name: "population_rows_copied_total",
			Help: "Person rows bulk inserted into Postgres",
		}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "population_http_requests_total",
			Help: "HTTP requests by route pattern and status code",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) IncFilesRead() {
	if m != nil {
		m.FilesRead.Inc()
	}
}

func (m *Metrics) IncRecordsRead() {
	if m != nil {
		m.RecordsRead.Inc()
	}
}

func (m *Metrics) IncIDParseFailure(column string) {
	if m != nil {
		m.IDParseFailures.WithLabelValues(column).Inc()
	}
}

func (m *Metrics) AddRowsCopied(n int64) {
	if m != nil {
		m.RowsCopied.Add(float64(n))
	}
}

func (m *Metrics) IncRequest(route, code string) {
	if m != nil {
		m.Requests.WithLabelValues(route, code).Inc()
	}
}
