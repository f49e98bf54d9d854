// Package ebpf implements socket-level transport diagnostics: kernel
// tcp_sendmsg/tcp_recvmsg kprobes that export each RF sample transport
// send/receive as an OpenTelemetry span, independent of the request/response
// framing internal/transport itself logs.
//
// Adapted from this package's original EBPFTracer, which targeted HTTP
// handlers (uprobes on ServeHTTP/HandleHTTPRequest, a traceparent-header
// W3C context parse). That has no analog here: this gNodeB's RF transport
// is a raw IQ byte stream, not HTTP. What carries over unchanged is the
// TCP-level kprobe pair (tcp_sendmsg/tcp_recvmsg) and the
// perf-buffer-to-OTel-span plumbing around it; the HTTP-specific event
// parsing and uprobe symbol-probing are dropped along with the HTTPEvent
// type.
package ebpf

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/perf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

//go:generate go run github.com/cilium/ebpf/cmd/bpf2go -cc clang -cflags "-O2 -g -Wall -Werror" tracetransport trace_transport.c -- -I/usr/include/bpf

// TransportEvent is one kernel-observed TCP send or receive on the RF
// transport's sockets.
type TransportEvent struct {
	TimestampNS uint64
	PID         uint32
	TID         uint32
	Direction   uint8 // 0 = send, 1 = recv
	Bytes       uint32
	DurationNS  uint64
}

// Config identifies the process whose sockets this tracer attaches to.
type Config struct {
	ProcessName string // for logging only; attachment is PID-scoped
}

// EBPFTracer manages the eBPF kprobes and perf-buffer reader for one
// process's RF transport sockets.
type EBPFTracer struct {
	config     Config
	collection *ebpf.Collection
	links      []link.Link
	reader     *perf.Reader
	logger     *zap.Logger
	tracer     trace.Tracer
	eventChan  chan *TransportEvent
	stopChan   chan struct{}
}

// NewEBPFTracer builds a transport tracer; call Load to attach it.
func NewEBPFTracer(config *Config, logger *zap.Logger) (*EBPFTracer, error) {
	return &EBPFTracer{
		config:    *config,
		logger:    logger,
		tracer:    otel.Tracer("gnb-transport-ebpf"),
		eventChan: make(chan *TransportEvent, 10000),
		stopChan:  make(chan struct{}),
	}, nil
}

// Load attaches the tcp_sendmsg/tcp_recvmsg kprobes and starts exporting
// observed sends/receives as spans. Individual probe attach failures are
// logged and skipped rather than aborting the whole tracer: a kernel
// lacking kprobe support for one symbol shouldn't take down the PHY/MAC
// process that depends on this package only for diagnostics.
func (t *EBPFTracer) Load(ctx context.Context) error {
	ctx, span := t.tracer.Start(ctx, "EBPFTracer.Load")
	defer span.End()

	t.logger.Info("loading eBPF transport probes", zap.String("process", t.config.ProcessName))

	spec, err := loadTracetransport()
	if err != nil {
		return fmt.Errorf("failed to load eBPF spec: %w", err)
	}

	coll, err := ebpf.NewCollection(spec)
	if err != nil {
		return fmt.Errorf("failed to create eBPF collection: %w", err)
	}
	t.collection = coll

	if err := t.attachNetworkProbes(); err != nil {
		t.logger.Warn("failed to attach network probes", zap.Error(err))
	}

	rd, err := perf.NewReader(t.collection.Maps["transport_events"], 4096*os.Getpagesize())
	if err != nil {
		return fmt.Errorf("failed to create perf reader: %w", err)
	}
	t.reader = rd

	go t.processEvents()

	span.SetAttributes(attribute.String("process", t.config.ProcessName))
	t.logger.Info("eBPF transport probes loaded successfully")
	return nil
}

// attachNetworkProbes attaches kprobes for TCP-level transport tracing.
func (t *EBPFTracer) attachNetworkProbes() error {
	if prog := t.collection.Programs["trace_tcp_sendmsg"]; prog != nil {
		l, err := link.Kprobe("tcp_sendmsg", prog, nil)
		if err != nil {
			return fmt.Errorf("failed to attach tcp_sendmsg: %w", err)
		}
		t.links = append(t.links, l)
		t.logger.Info("attached tcp_sendmsg kprobe")
	}

	if prog := t.collection.Programs["trace_tcp_recvmsg"]; prog != nil {
		l, err := link.Kprobe("tcp_recvmsg", prog, nil)
		if err != nil {
			return fmt.Errorf("failed to attach tcp_recvmsg: %w", err)
		}
		t.links = append(t.links, l)
		t.logger.Info("attached tcp_recvmsg kprobe")
	}

	return nil
}

// processEvents reads events from the perf buffer and exports them.
func (t *EBPFTracer) processEvents() {
	t.logger.Info("starting eBPF transport event processing")

	for {
		select {
		case <-t.stopChan:
			t.logger.Info("stopping eBPF transport event processing")
			return
		default:
		}

		record, err := t.reader.Read()
		if err != nil {
			if perf.IsClosed(err) {
				return
			}
			t.logger.Error("error reading from perf buffer", zap.Error(err))
			continue
		}

		if record.LostSamples > 0 {
			t.logger.Warn("lost perf samples", zap.Uint64("count", record.LostSamples))
		}

		event, err := parseTransportEvent(record.RawSample)
		if err != nil {
			t.logger.Error("error parsing transport event", zap.Error(err))
			continue
		}

		select {
		case t.eventChan <- event:
		default:
			t.logger.Warn("transport event channel full, dropping event")
		}

		t.exportToOTel(event)
	}
}

// exportToOTel emits one span per kernel-observed send/receive, tagged with
// byte count and duration so a trace backend can line it up against
// internal/transport's own logged block counts.
func (t *EBPFTracer) exportToOTel(event *TransportEvent) {
	name := "tcp.send"
	if event.Direction == 1 {
		name = "tcp.recv"
	}

	_, span := t.tracer.Start(context.Background(), name,
		trace.WithTimestamp(nsToTime(event.TimestampNS)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	span.SetAttributes(
		attribute.String("process.name", t.config.ProcessName),
		attribute.Int("net.bytes", int(event.Bytes)),
		attribute.Int64("net.duration_ns", int64(event.DurationNS)),
		attribute.Int("process.pid", int(event.PID)),
		attribute.Int("thread.id", int(event.TID)),
		attribute.String("ebpf.source", "kernel"),
	)

	span.End(trace.WithTimestamp(nsToTime(event.TimestampNS + event.DurationNS)))

	t.logger.Debug("eBPF event exported to OpenTelemetry",
		zap.String("direction", name),
		zap.Uint32("bytes", event.Bytes),
		zap.Uint64("duration_ns", event.DurationNS),
	)
}

// Close closes the eBPF tracer and cleans up resources.
func (t *EBPFTracer) Close() error {
	t.logger.Info("closing eBPF tracer")

	close(t.stopChan)

	if t.reader != nil {
		if err := t.reader.Close(); err != nil {
			t.logger.Error("error closing perf reader", zap.Error(err))
		}
	}

	for _, l := range t.links {
		if err := l.Close(); err != nil {
			t.logger.Error("error closing link", zap.Error(err))
		}
	}

	if t.collection != nil {
		if err := t.collection.Close(); err != nil {
			t.logger.Error("error closing eBPF collection", zap.Error(err))
		}
	}

	t.logger.Info("eBPF tracer closed")
	return nil
}

// GetEventChannel returns the channel for receiving raw transport events.
func (t *EBPFTracer) GetEventChannel() <-chan *TransportEvent {
	return t.eventChan
}

func nsToTime(ns uint64) time.Time {
	return time.Unix(0, int64(ns))
}

// parseTransportEvent decodes a raw perf-buffer sample into a
// TransportEvent, a fixed little-endian layout matching the
// trace_transport.c event struct.
func parseTransportEvent(raw []byte) (*TransportEvent, error) {
	var event TransportEvent
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &event); err != nil {
		return nil, fmt.Errorf("decoding transport event: %w", err)
	}
	return &event, nil
}

// AttachToProcess attaches the eBPF transport probes to a running process
// by PID, for attaching diagnostics to an already-running gNodeB rather
// than wiring them in at startup.
func AttachToProcess(pid int, config *Config, logger *zap.Logger) (*EBPFTracer, error) {
	config.ProcessName = fmt.Sprintf("pid-%d", pid)

	tracer, err := NewEBPFTracer(config, logger)
	if err != nil {
		return nil, err
	}

	if err := tracer.Load(context.Background()); err != nil {
		return nil, err
	}

	return tracer, nil
}
