package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for the voice assistant.
type AssistantMetrics struct {
	sessionsStarted *prometheus.CounterVec
	turnsTotal      *prometheus.CounterVec
	bookingsTotal   *prometheus.CounterVec
	turnLatency     *prometheus.HistogramVec
	sttLatency      prometheus.Histogram
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carcenter",
			Subsystem: "assistant",
			Name:      "sessions_started_total",
			Help:      "Total dialogue sessions opened",
		}, []string{"status"}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carcenter",
			Subsystem: "assistant",
			Name:      "turns_total",
			Help:      "Total dialogue turns processed",
		}, []string{"stage", "status"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carcenter",
			Subsystem: "assistant",
			Name:      "bookings_total",
			Help:      "Total booking attempts",
		}, []string{"outcome"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carcenter",
			Subsystem: "assistant",
			Name:      "turn_latency_seconds",
			Help:      "Latency of one dialogue turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		sttLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carcenter",
			Subsystem: "assistant",
			Name:      "transcription_latency_seconds",
			Help:      "Latency of speech-to-text requests",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsStarted, m.turnsTotal, m.bookingsTotal, m.turnLatency, m.sttLatency)
	return m
}

func (m *AssistantMetrics) ObserveSessionStarted(status string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(status).Inc()
}

func (m *AssistantMetrics) ObserveTurn(stage, status string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(stage, status).Inc()
	m.turnLatency.WithLabelValues(stage).Observe(seconds)
}

func (m *AssistantMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *AssistantMetrics) ObserveTranscription(seconds float64) {
	if m == nil {
		return
	}
	m.sttLatency.Observe(seconds)
}
