package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Common metrics that all NFs should expose
var (
	// HTTP Request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Service health
	ServiceUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "service_up",
			Help: "Whether the service is up (1 = up, 0 = down)",
		},
	)

	// NGAP association state, mirroring the NRF registration gauge this was
	// adapted from: the gNodeB has one external control-plane collaborator
	// (the AMF) instead of an NRF.
	NGAPSetupComplete = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ngap_setup_complete",
			Help: "Whether the NG Setup procedure with the AMF succeeded (1 = succeeded, 0 = not)",
		},
	)

	// Downlink production
	SlotsProduced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gnb_slots_produced_total",
			Help: "Total number of downlink slots produced",
		},
	)

	SymbolsProduced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gnb_symbols_produced_total",
			Help: "Total number of OFDM symbols produced",
		},
	)

	TransportUnderruns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gnb_transport_underruns_total",
			Help: "Total number of times the IQ transport ring was empty when the RF peer pulled a block",
		},
	)

	TransportDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gnb_transport_drops_total",
			Help: "Total number of IQ blocks dropped because the transmit ring was full",
		},
	)

	// Random access
	PRACHDetections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gnb_prach_detections_total",
			Help: "Total number of PRACH preambles detected",
		},
	)

	RARsScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gnb_rars_scheduled_total",
			Help: "Total number of Random Access Responses scheduled",
		},
	)

	// Connected UEs, tracked by internal/rrc.
	ConnectedUEs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gnb_connected_ues",
			Help: "Number of UEs currently in RRC_CONNECTED",
		},
	)

	// Audit sink (internal/audit): events dropped because the sink's bounded
	// channel was full, or because the sink is disabled/unreachable.
	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gnb_audit_events_dropped_total",
			Help: "Total number of RA/RRC audit events dropped instead of written to ClickHouse",
		},
	)
)

// MetricsServer represents a Prometheus metrics HTTP server
type MetricsServer struct {
	port   int
	server *http.Server
	logger *zap.Logger
}

// NewMetricsServer creates a new metrics server
func NewMetricsServer(port int, logger *zap.Logger) *MetricsServer {
	return &MetricsServer{
		port:   port,
		logger: logger,
	}
}

// Start starts the metrics HTTP server
func (m *MetricsServer) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	m.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", m.port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	m.logger.Info("Starting metrics server", zap.Int("port", m.port))
	return m.server.ListenAndServe()
}

// Stop gracefully stops the metrics server
func (m *MetricsServer) Stop() error {
	if m.server != nil {
		return m.server.Close()
	}
	return nil
}

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// SetServiceUp sets the service health status
func SetServiceUp(up bool) {
	if up {
		ServiceUp.Set(1)
	} else {
		ServiceUp.Set(0)
	}
}

// SetNGAPSetupComplete sets the NG Setup association status.
func SetNGAPSetupComplete(complete bool) {
	if complete {
		NGAPSetupComplete.Set(1)
	} else {
		NGAPSetupComplete.Set(0)
	}
}
