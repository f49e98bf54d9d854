// Package adminapi is the read-only operator HTTP surface for the gNodeB:
// cell config summary, a forward look at the slot schedule, and a JSON
// dump of producer/transport/MAC/RRC counters. It carries no write paths
// and never touches the resource grid or the transport ring directly,
// only the snapshot accessors each layer already exposes.
//
// Grounded on the chi-based internal/server packages shared by the
// AMF/SMF/UDM/UDR/NRF/AUSF NFs (UDRServer in particular, for its
// /admin route group and status/stats handlers), narrowed down to the
// operations this core actually has: no SBI procedures, just status.
package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/internal/cellid"
	"github.com/openran-go/gnb-core/internal/config"
	"github.com/openran-go/gnb-core/internal/frame"
	"github.com/openran-go/gnb-core/internal/mac"
	"github.com/openran-go/gnb-core/internal/rrc"
	"github.com/openran-go/gnb-core/internal/transport"
)

// scheduleProvider is the slice of *mac.Layer the schedule endpoint needs.
type scheduleProvider interface {
	GetSlotSchedule(sfn, slot int) (frame.SlotSchedule, error)
}

// raProvider is the slice of *mac.Layer the stats endpoint needs.
type raProvider interface {
	PendingRandomAccess() []mac.RandomAccessProcedure
}

// positionProvider is the slice of *producer.Loop the schedule endpoint
// needs: where in the frame/slot cycle the downlink is right now.
type positionProvider interface {
	CurrentPosition() (frameNumber, slotNumber int)
	SlotsPerFrame() int
}

// ueProvider is the slice of *rrc.Layer the stats endpoint needs.
type ueProvider interface {
	ActiveUEs() []rrc.UEContext
}

// statsProvider is the slice of *transport.RF the stats endpoint needs.
type statsProvider interface {
	Stats() transport.Stats
}

// Server is the admin HTTP server.
type Server struct {
	cfg       *config.Config
	mac       scheduleProvider
	raSource  raProvider
	producer  positionProvider
	rrcLayer  ueProvider
	rf        statsProvider
	router    *chi.Mux
	http      *http.Server
	logger    *zap.Logger
	startedAt time.Time
}

// New builds an admin server. Any dependency left nil is treated as absent
// by the handler that needs it: /stats leaves out the fields that dependency
// would supply, and /schedule answers 503 when mac or producer is nil, so a
// gNodeB bring-up missing one collaborator still serves a partial /stats
// response.
func New(cfg *config.Config, mac scheduleProvider, raSource raProvider, producer positionProvider, rrcLayer ueProvider, rf statsProvider, logger *zap.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		mac:       mac,
		raSource:  raSource,
		producer:  producer,
		rrcLayer:  rrcLayer,
		rf:        rf,
		router:    chi.NewRouter(),
		logger:    logger,
		startedAt: time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(5 * time.Second))

	s.router.Get("/status", s.handleStatus)
	s.router.Get("/schedule", s.handleSchedule)
	s.router.Get("/stats", s.handleStats)
}

// Start starts the admin HTTP server. It blocks until Stop shuts the
// server down or the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Obs.AdminPort)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.logger.Info("starting admin api", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the admin HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	mcc, mnc, _ := config.ParsePLMN(s.cfg.Cell.PLMN)

	resp := map[string]interface{}{
		"pci":        s.cfg.Cell.PCI,
		"plmn":       s.cfg.Cell.PLMN,
		"mcc":        mcc,
		"mnc":        mnc,
		"tac":        s.cfg.Cell.TAC,
		"dl_arfcn":   s.cfg.Cell.DLArfcn,
		"band":       s.cfg.Cell.Band,
		"bw_mhz":     s.cfg.Cell.ChannelBandwidthMHz,
		"scs_khz":    s.cfg.Cell.CommonSCSkHz,
		"uptime_sec": time.Since(s.startedAt).Seconds(),
	}

	// gNB ID uses the PCI-as-gNB-ID placeholder internal/ngap also uses,
	// fit into the minimum 22-bit field since there's no dedicated gNB ID
	// configuration field.
	identity, err := cellid.NewCellIdentity(uint32(s.cfg.Cell.PCI), 22, 0)
	if err == nil {
		nrcgi := cellid.NRCGI{PLMNMCC: mcc, PLMNMNC: mnc, Cell: identity}
		resp["nr_cgi"] = nrcgi.String()
	}

	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if s.mac == nil || s.producer == nil {
		s.respondError(w, http.StatusServiceUnavailable, "schedule not available")
		return
	}

	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := parsePositiveInt(raw); err == nil {
			n = parsed
		}
	}
	if n > 160 {
		n = 160
	}

	sfn, slot := s.producer.CurrentPosition()
	fromSFN, fromSlot := sfn, slot
	slotsPerFrame := s.producer.SlotsPerFrame()

	schedules := make([]frame.SlotSchedule, 0, n)
	for i := 0; i < n; i++ {
		sched, err := s.mac.GetSlotSchedule(sfn, slot)
		if err == nil {
			schedules = append(schedules, sched)
		}
		slot++
		if slot >= slotsPerFrame {
			slot = 0
			sfn = (sfn + 1) % 1024
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"from_sfn":  fromSFN,
		"from_slot": fromSlot,
		"schedule":  schedules,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	out := map[string]interface{}{}

	if s.raSource != nil {
		out["pending_random_access"] = len(s.raSource.PendingRandomAccess())
	}
	if s.rrcLayer != nil {
		out["connected_ues"] = len(s.rrcLayer.ActiveUEs())
	}
	if s.rf != nil {
		out["transport"] = s.rf.Stats()
	}

	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("adminapi: encoding response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func parsePositiveInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("adminapi: non-positive count %q", s)
	}
	return n, nil
}
