package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the audiobook pipeline.
type Metrics struct {
	// Chunking metrics
	ChaptersChunked prometheus.Counter
	ChunksProduced  prometheus.Counter
	ChunkSize       prometheus.Histogram

	// Rendering metrics
	UnitsRendered  prometheus.Counter
	UnitsSkipped   prometheus.Counter
	RenderFailures prometheus.Counter
	RenderDuration prometheus.Histogram

	// Assembly metrics
	StitchRuns     prometheus.Counter
	OutputDuration prometheus.Gauge

	// Encoding metrics
	EncodeRuns     *prometheus.CounterVec
	EncodeFailures *prometheus.CounterVec

	// HTTP API metrics
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all pipeline metrics.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry registers the metrics against a caller-supplied
// registry. Used by tests to avoid duplicate registration panics.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ChaptersChunked: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookvoice_chapters_chunked_total",
			Help: "Total number of chapters processed by the chunker",
		}),
		ChunksProduced: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookvoice_chunks_produced_total",
			Help: "Total number of text chunks produced",
		}),
		ChunkSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookvoice_chunk_size_chars",
			Help:    "Size of produced text chunks in characters",
			Buckets: prometheus.ExponentialBuckets(16, 2, 8), // 16 to ~2k chars
		}),

		UnitsRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookvoice_units_rendered_total",
			Help: "Total number of audio units rendered by the TTS engine",
		}),
		UnitsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookvoice_units_skipped_total",
			Help: "Total number of units skipped because they were already rendered",
		}),
		RenderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookvoice_render_failures_total",
			Help: "Total number of failed unit render attempts",
		}),
		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookvoice_render_duration_seconds",
			Help:    "Wall-clock time spent rendering one unit",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),

		StitchRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "bookvoice_stitch_runs_total",
			Help: "Total number of completed assembly runs",
		}),
		OutputDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bookvoice_output_duration_seconds",
			Help: "Duration of the most recently assembled waveform",
		}),

		EncodeRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bookvoice_encode_runs_total",
			Help: "Total number of encoder invocations",
		}, []string{"format"}),
		EncodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bookvoice_encode_failures_total",
			Help: "Total number of failed encoder invocations",
		}, []string{"format"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bookvoice_http_requests_total",
			Help: "Total number of monitoring HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
	}
}

// RecordChapterChunked records one chunked chapter and its chunk sizes.
func (m *Metrics) RecordChapterChunked(chunks []string) {
	m.ChaptersChunked.Inc()
	for _, c := range chunks {
		m.ChunksProduced.Inc()
		m.ChunkSize.Observe(float64(len(c)))
	}
}

// RecordUnitRendered records a successful unit render.
func (m *Metrics) RecordUnitRendered(durationSeconds float64) {
	m.UnitsRendered.Inc()
	m.RenderDuration.Observe(durationSeconds)
}

// RecordUnitSkipped records a unit skipped by the completion index.
func (m *Metrics) RecordUnitSkipped() {
	m.UnitsSkipped.Inc()
}

// RecordRenderFailure records a failed unit render attempt.
func (m *Metrics) RecordRenderFailure() {
	m.RenderFailures.Inc()
}

// RecordStitch records a completed assembly run and the output length.
func (m *Metrics) RecordStitch(outputSeconds float64) {
	m.StitchRuns.Inc()
	m.OutputDuration.Set(outputSeconds)
}

// RecordEncode records an encoder invocation for a container format.
func (m *Metrics) RecordEncode(format string, failed bool) {
	m.EncodeRuns.WithLabelValues(format).Inc()
	if failed {
		m.EncodeFailures.WithLabelValues(format).Inc()
	}
}

// RecordHTTPRequest records a monitoring endpoint hit.
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
}
