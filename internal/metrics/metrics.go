package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tracker", Name: "events_recorded_total", Help: "Participation events committed",
	})
	PickerDraws = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracker", Name: "picker_draws_total", Help: "Student picks by mode",
	}, []string{"mode"}) // mode: random|fuzzy
	CorrectionBatches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tracker", Name: "correction_batches_total", Help: "Redemption batches applied",
	})
	SummaryRefresh = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tracker", Name: "summary_refresh_seconds", Help: "Summary refresh duration",
		Buckets: prometheus.DefBuckets,
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tracker", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(EventsRecorded, PickerDraws, CorrectionBatches, SummaryRefresh, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveSummaryRefresh(d time.Duration) { SummaryRefresh.Observe(d.Seconds()) }
