package api

import (
	"log/slog"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/bugmatrix/bugmatrix/internal/matrix"
	"github.com/bugmatrix/bugmatrix/viewer/internal/reader"
)

// metrics returns GET /metrics — the snapshot rendered as a Prometheus
// text exposition, so the matrix can be scraped alongside whatever else
// the host monitors.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range metricFamilies(h.views.View(), h.now()) {
		if err := enc.Encode(mf); err != nil {
			slog.Error("api: encode metric family", "family", mf.GetName(), "err", err)
			return
		}
	}
}

// metricFamilies renders the view as gauge families in a fixed order.
// Cell values are gauges, not counters: every pipeline run republishes
// absolute counts.
func metricFamilies(v reader.View, now time.Time) []*dto.MetricFamily {
	stale := 0.0
	if v.State == reader.StateStale {
		stale = 1
	}
	families := []*dto.MetricFamily{
		gaugeFamily("bugmatrix_reader_stale",
			"1 while the reader is serving last-known-good data.",
			gauge(stale)),
	}

	if v.Snapshot == nil {
		return families
	}
	snap := v.Snapshot

	cells := make([]*dto.Metric, 0, len(matrix.Platforms())*len(matrix.Statuses()))
	totals := make([]*dto.Metric, 0, len(matrix.Platforms()))
	for _, p := range matrix.Platforms() {
		for _, s := range matrix.Statuses() {
			g := gauge(float64(snap.Matrix.Cell(p, s)))
			g.Label = labels("platform", string(p), "status", string(s))
			cells = append(cells, g)
		}
		g := gauge(float64(snap.Matrix.PlatformTotal(p)))
		g.Label = labels("platform", string(p))
		totals = append(totals, g)
	}

	families = append(families,
		gaugeFamily("bugmatrix_issues",
			"Bug count per platform and status from the latest snapshot.",
			cells...),
		gaugeFamily("bugmatrix_platform_issues",
			"Bug count per platform across all recognized statuses.",
			totals...),
		gaugeFamily("bugmatrix_issues_grand_total",
			"Sum of all matrix cells in the latest snapshot.",
			gauge(float64(snap.GrandTotal))),
		gaugeFamily("bugmatrix_issues_scanned",
			"Bug-type issues consumed by the latest pipeline run.",
			gauge(float64(snap.TotalIssuesScanned))),
		gaugeFamily("bugmatrix_issues_unclassified",
			"Scanned issues no platform rule matched.",
			gauge(float64(snap.UnclassifiedCount))),
		gaugeFamily("bugmatrix_issues_status_excluded",
			"Scanned issues dropped for an unrecognized status.",
			gauge(float64(snap.StatusExcludedCount))),
		gaugeFamily("bugmatrix_snapshot_age_seconds",
			"Seconds since the displayed snapshot was generated.",
			gauge(v.Age(now).Seconds())),
	)
	return families
}

func gaugeFamily(name, help string, metrics ...*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   strp(name),
		Help:   strp(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: metrics,
	}
}

func gauge(value float64) *dto.Metric {
	return &dto.Metric{Gauge: &dto.Gauge{Value: f64p(value)}}
}

// labels builds label pairs from alternating name/value arguments.
func labels(nv ...string) []*dto.LabelPair {
	out := make([]*dto.LabelPair, 0, len(nv)/2)
	for i := 0; i+1 < len(nv); i += 2 {
		out = append(out, &dto.LabelPair{Name: strp(nv[i]), Value: strp(nv[i+1])})
	}
	return out
}

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }
