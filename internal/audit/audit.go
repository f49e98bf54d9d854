// Package audit is the RA/RRC audit sink: an async, best-effort log of
// random-access and RRC procedures (PRACH detections, RAR emission, RRC
// Setup/Release) written to ClickHouse.
//
// Grounded on the teacher's UDR internal/repository.ClickHouseRepository
// shape (database/sql-style Open, parameterized INSERT, a narrow
// Repository-like interface) adapted to a write-only, fire-and-forget
// collaborator instead of a CRUD data store: the teacher's internal/clickhouse
// client wrapper that ClickHouseRepository builds on isn't present anywhere
// in the pack (the driver dependency is declared in go.mod but the wrapper
// package itself was never vendored), so this sink opens
// github.com/ClickHouse/clickhouse-go/v2 directly through its database/sql
// driver rather than through a teacher-shaped client type that doesn't
// exist to imitate.
//
// The sink never blocks its callers: Record enqueues onto a bounded channel
// and returns immediately, dropping the event and counting it if the
// channel is full or the sink is disabled (empty DSN). ClickHouse here is
// telemetry, not state - there is no subscriber data and no read path.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/common/metrics"
)

// Kind distinguishes the RA/RRC procedure an Event records.
type Kind string

const (
	KindPRACHDetection Kind = "prach_detection"
	KindRARScheduled   Kind = "rar_scheduled"
	KindRRCSetup       Kind = "rrc_setup"
	KindRRCRelease     Kind = "rrc_release"
)

// Event is one audited procedure occurrence.
type Event struct {
	EventID   string
	Kind      Kind
	RNTI      uint16
	Timestamp time.Time
	Detail    string
}

// Sink is the bounded-channel audit writer. A Sink built with an empty DSN
// is disabled: Record still returns immediately but every event counts as
// dropped rather than being queued.
type Sink struct {
	db      *sql.DB
	enabled bool
	ch      chan Event
	stop    chan struct{}
	done    chan struct{}
	logger  *zap.Logger
}

// NewSink opens a ClickHouse connection for the given DSN and returns a
// Sink ready to Start. An empty dsn returns a disabled Sink that opens no
// connection; Start and Close on a disabled Sink are no-ops.
func NewSink(dsn string, logger *zap.Logger) (*Sink, error) {
	if dsn == "" {
		return &Sink{enabled: false, logger: logger}, nil
	}

	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: opening clickhouse connection: %w", err)
	}

	return &Sink{
		db:      db,
		enabled: true,
		ch:      make(chan Event, 1024),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		logger:  logger,
	}, nil
}

// Start launches the goroutine draining the event channel into ClickHouse.
// A disabled Sink does nothing.
func (s *Sink) Start(ctx context.Context) {
	if !s.enabled {
		return
	}
	go s.run(ctx)
}

func (s *Sink) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-s.ch:
			if !ok {
				return
			}
			if err := s.write(ctx, ev); err != nil {
				metrics.AuditEventsDropped.Inc()
				s.logger.Warn("audit: write failed", zap.String("kind", string(ev.Kind)), zap.Error(err))
			}
		}
	}
}

func (s *Sink) write(ctx context.Context, ev Event) error {
	const query = `INSERT INTO gnb.ra_rrc_audit (event_id, kind, rnti, ts, detail) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, ev.EventID, string(ev.Kind), ev.RNTI, ev.Timestamp, ev.Detail)
	return err
}

// Record enqueues an audit event without blocking. Under a full channel, or
// when the sink is disabled, the event is dropped and
// metrics.AuditEventsDropped is incremented instead - this is the property
// that keeps the MAC hot path clear of the audit sink regardless of
// ClickHouse availability.
func (s *Sink) Record(ev Event) {
	if !s.enabled {
		metrics.AuditEventsDropped.Inc()
		return
	}
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	select {
	case s.ch <- ev:
	default:
		metrics.AuditEventsDropped.Inc()
	}
}

// RecordPRACHDetection satisfies internal/mac's narrow AuditSink interface.
func (s *Sink) RecordPRACHDetection(rnti uint16, timingAdvanceUs float32) {
	s.Record(Event{
		Kind:      KindPRACHDetection,
		RNTI:      rnti,
		Timestamp: time.Now(),
		Detail:    fmt.Sprintf("timing_advance_us=%.2f", timingAdvanceUs),
	})
}

// RecordRARScheduled satisfies internal/mac's narrow AuditSink interface.
func (s *Sink) RecordRARScheduled(rnti uint16) {
	s.Record(Event{Kind: KindRARScheduled, RNTI: rnti, Timestamp: time.Now()})
}

// RecordRRCSetup satisfies internal/rrc's narrow AuditSink interface.
func (s *Sink) RecordRRCSetup(rnti uint16) {
	s.Record(Event{Kind: KindRRCSetup, RNTI: rnti, Timestamp: time.Now()})
}

// RecordRRCRelease satisfies internal/rrc's narrow AuditSink interface.
func (s *Sink) RecordRRCRelease(rnti uint16) {
	s.Record(Event{Kind: KindRRCRelease, RNTI: rnti, Timestamp: time.Now()})
}

// Close stops the drain goroutine and closes the ClickHouse connection. A
// disabled Sink does nothing.
func (s *Sink) Close() error {
	if !s.enabled {
		return nil
	}
	close(s.stop)
	<-s.done
	return s.db.Close()
}
