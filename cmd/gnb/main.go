package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openran-go/gnb-core/common/metrics"
	"github.com/openran-go/gnb-core/internal/adminapi"
	"github.com/openran-go/gnb-core/internal/audit"
	"github.com/openran-go/gnb-core/internal/config"
	"github.com/openran-go/gnb-core/internal/frame"
	"github.com/openran-go/gnb-core/internal/mac"
	"github.com/openran-go/gnb-core/internal/ngap"
	"github.com/openran-go/gnb-core/internal/ofdm"
	"github.com/openran-go/gnb-core/internal/producer"
	"github.com/openran-go/gnb-core/internal/rrc"
	"github.com/openran-go/gnb-core/internal/transport"
	"github.com/openran-go/gnb-core/observability/ebpf"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config/gnb.yaml", "path to configuration file")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error); overrides log.all_level from the config")
	flag.Parse()

	logger := createLogger(*logLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting gNodeB",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if *logLevel == "" {
		logger = createLogger(cfg.Log.AllLevel)
	}

	logger.Info("configuration loaded",
		zap.Uint16("pci", cfg.Cell.PCI),
		zap.String("plmn", cfg.Cell.PLMN),
		zap.Uint32("dl_arfcn", cfg.Cell.DLArfcn),
		zap.Uint32("bw_mhz", cfg.Cell.ChannelBandwidthMHz),
	)

	numerology, err := frame.NumerologyFromSCS(int(cfg.Cell.CommonSCSkHz))
	if err != nil {
		logger.Fatal("invalid subcarrier spacing", zap.Error(err))
	}

	plmnDigits, err := mac.PlmnIDFromDigits(cfg.Cell.PLMN)
	if err != nil {
		logger.Fatal("invalid PLMN", zap.Error(err))
	}

	sib1Config := mac.SIB1Config{
		CellID:            int(cfg.Cell.PCI),
		PLMNID:            plmnDigits,
		TAC:               cfg.Cell.TAC,
		CellSelectionInfo: mac.DefaultCellSelectionInfo(),
		FreqBandList:      []uint16{cfg.Cell.Band},
	}

	macLayer, err := mac.NewLayer(mac.Config{
		CellID:        int(cfg.Cell.PCI),
		Numerology:    numerology,
		Coreset0Index: int(cfg.Cell.PDCCH.Coreset0Index),
		SIB1Config:    sib1Config,
		MaxUEs:        1024,
	}, logger)
	if err != nil {
		logger.Fatal("failed to build mac layer", zap.Error(err))
	}
	if err := macLayer.Initialize(); err != nil {
		logger.Fatal("failed to initialize mac layer", zap.Error(err))
	}

	// Audit sink: never blocks MAC/RRC, disabled outright when the DSN is
	// empty.
	auditSink, err := audit.NewSink(cfg.Obs.ClickHouse.DSN, logger)
	if err != nil {
		logger.Fatal("failed to build audit sink", zap.Error(err))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	auditSink.Start(ctx)
	defer auditSink.Close()
	macLayer.SetAuditSink(auditSink)

	rrcRx := make(chan mac.RRCMessage, 16)
	macLayer.SetRRCChannel(rrcRx)
	rrcLayer := rrc.NewLayer(macLayer, rrcRx, logger)
	rrcLayer.SetAuditSink(auditSink)
	rrcLayer.Start(ctx)
	defer rrcLayer.Stop()

	rf := transport.New(transport.Config{
		TXListenAddr: cfg.RuSDR.TXListenAddr,
		RXDialAddr:   cfg.RuSDR.RXDialAddr,
		RingCapacity: 64,
		BlockSamples: 1920,
	}, logger)

	loop := producer.NewLoop(producer.Config{
		PCI:               int(cfg.Cell.PCI),
		CellID:            int(cfg.Cell.PCI),
		KSSB:              0,
		FFTSize:           bandwidthToFFTSize(cfg.Cell.ChannelBandwidthMHz),
		BandwidthRBs:      bandwidthToRBs(cfg.Cell.ChannelBandwidthMHz, cfg.Cell.CommonSCSkHz),
		Numerology:        numerology,
		CPKind:            ofdm.CPNormal,
		BasebandBackoffDB: 6.0,
	}, macLayer, rf, logger)

	// Metrics server.
	metricsServer := metrics.NewMetricsServer(int(cfg.Obs.MetricsPort), logger)
	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	defer metricsServer.Stop()
	metrics.SetServiceUp(true)
	defer metrics.SetServiceUp(false)

	// Admin API.
	admin := adminapi.New(cfg, macLayer, macLayer, loop, rrcLayer, rf, logger)
	go func() {
		if err := admin.Start(); err != nil {
			logger.Error("admin api error", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := admin.Stop(shutdownCtx); err != nil {
			logger.Error("failed to stop admin api", zap.Error(err))
		}
	}()

	// Optional socket-level transport diagnostics.
	var tracer *ebpf.EBPFTracer
	if cfg.Obs.EBPF.Enabled {
		tracer, err = ebpf.NewEBPFTracer(&ebpf.Config{ProcessName: "gnb-core"}, logger)
		if err != nil {
			logger.Warn("failed to build ebpf tracer", zap.Error(err))
		} else if err := tracer.Load(ctx); err != nil {
			logger.Warn("failed to load ebpf tracer", zap.Error(err))
			tracer = nil
		}
	}
	if tracer != nil {
		defer tracer.Close()
	}

	// NG Setup: never blocks downlink bring-up on a failed or absent AMF.
	ngapClient := ngap.NewClient(ngap.Config{
		AMFAddr:         fmt.Sprintf("%s:%d", cfg.CuCP.AMF.Addr, cfg.CuCP.AMF.Port),
		GNBID:           uint32(cfg.Cell.PCI),
		PLMN:            plmnDigits.Encode(),
		TAC:             cfg.Cell.TAC,
		NodeName:        "gnb-core",
		DialTimeout:     5 * time.Second,
		ResponseTimeout: 10 * time.Second,
	}, logger)
	go func() {
		result, err := ngapClient.Setup(ctx)
		if err != nil {
			logger.Warn("ng setup failed, continuing in broadcast-only mode", zap.Error(err))
			metrics.SetNGAPSetupComplete(false)
			return
		}
		metrics.SetNGAPSetupComplete(result.Succeeded)
	}()

	loop.PreBuffer()

	rfErrors := make(chan error, 1)
	go func() {
		rfErrors <- rf.Run(ctx)
	}()

	loopErrors := make(chan error, 1)
	go func() {
		loopErrors <- loop.Run(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-rfErrors:
		logger.Error("rf transport error", zap.Error(err))
	case err := <-loopErrors:
		logger.Error("producer loop error", zap.Error(err))
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	cancel()
	logger.Info("gnodeb shutdown complete")
}

// bandwidthToFFTSize returns the smallest power-of-two FFT size that covers
// the channel bandwidth at the configured sample rate, per 3GPP TS 38.104
// Table 5.3.3-1's common FFT sizes for FR1.
func bandwidthToFFTSize(bwMHz uint32) int {
	switch {
	case bwMHz <= 10:
		return 1024
	case bwMHz <= 20:
		return 2048
	case bwMHz <= 50:
		return 4096
	default:
		return 8192
	}
}

// bandwidthToRBs returns the transmission bandwidth configuration in
// resource blocks for the given channel bandwidth and subcarrier spacing,
// per 3GPP TS 38.104 Table 5.3.2-1 (FR1, one layer).
func bandwidthToRBs(bwMHz, scsKHz uint32) int {
	type key struct {
		bw  uint32
		scs uint32
	}
	table := map[key]int{
		{5, 15}: 25, {10, 15}: 52, {15, 15}: 79, {20, 15}: 106,
		{5, 30}: 11, {10, 30}: 24, {15, 30}: 38, {20, 30}: 51,
		{25, 30}: 65, {40, 30}: 106, {50, 30}: 133,
	}
	if rbs, ok := table[key{bwMHz, scsKHz}]; ok {
		return rbs
	}
	return 51 // 20 MHz / 30 kHz fallback for configurations outside the common table.
}

// createLogger builds a production zap logger at the given level.
func createLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	return logger
}
