package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/common/metrics"
)

// requestByte is the single-byte "give me samples" request the RX side
// sends and the TX side waits for, mirroring the dummy-byte REQ payload of
// the original ZMQ REQ/REP exchange.
const requestByte = 0x01

// Config configures one direction-pair of the RF sample transport.
type Config struct {
	// TXListenAddr is where this process listens for a peer requesting
	// downlink samples (this gNB is the REP side on TX, like the original
	// ZMQ TX socket).
	TXListenAddr string
	// RXDialAddr is the peer this process dials to pull uplink samples
	// (this gNB is the REQ side on RX).
	RXDialAddr string
	// RingCapacity bounds the number of pending IQBuffer blocks queued for
	// transmission before the oldest is dropped.
	RingCapacity int
	// BlockSamples is the number of complex samples exchanged per request.
	BlockSamples int
	// RXPollInterval paces the RX request loop, matching the original
	// driver's periodic polling rather than a tight spin loop.
	RXPollInterval time.Duration
}

// DefaultConfig returns sensible defaults for a 10ms poll cadence and a
// 64-block TX ring.
func DefaultConfig() Config {
	return Config{
		RingCapacity:   64,
		BlockSamples:   1920,
		RXPollInterval: 10 * time.Millisecond,
	}
}

// Stats mirrors the original driver's RfStats counters.
type Stats struct {
	TXSamples    uint64
	RXSamples    uint64
	TXUnderruns  uint64
	RXOverruns   uint64
	TXLatePacket uint64
	RXLatePacket uint64
}

// RF is the RF sample transport: a TCP substitute for the ZMQ REQ/REP
// socket pair of interfaces/src/zmq_rf.rs. The TX side serves downlink IQ
// samples from a bounded ring buffer to a connecting peer on request; the
// RX side dials a peer and periodically requests uplink samples. Each
// direction runs on its own goroutine, cancelled via ctx, following the
// gtpu handler's listener-per-goroutine pattern.
type RF struct {
	cfg    Config
	logger *zap.Logger

	txRing *ring
	rxOut  chan IQBuffer

	txSamples    atomic.Uint64
	rxSamples    atomic.Uint64
	txUnderruns  atomic.Uint64
	rxOverruns   atomic.Uint64
	txLatePacket atomic.Uint64
	rxLatePacket atomic.Uint64
}

// New constructs an RF transport. Call Run to start serving/polling.
func New(cfg Config, logger *zap.Logger) *RF {
	if cfg.RingCapacity <= 0 {
		cfg.RingCapacity = 64
	}
	if cfg.BlockSamples <= 0 {
		cfg.BlockSamples = 1920
	}
	if cfg.RXPollInterval <= 0 {
		cfg.RXPollInterval = 10 * time.Millisecond
	}
	return &RF{
		cfg:    cfg,
		logger: logger,
		txRing: newRing(cfg.RingCapacity),
		rxOut:  make(chan IQBuffer, cfg.RingCapacity),
	}
}

// Run starts the TX listener and RX dialer goroutines and blocks until ctx
// is cancelled.
func (r *RF) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	if r.cfg.TXListenAddr != "" {
		go r.runTXServer(ctx, errCh)
	}
	if r.cfg.RXDialAddr != "" {
		go r.runRXClient(ctx, errCh)
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Transmit enqueues a block of downlink samples for delivery to whichever
// peer is connected on the TX side. Drops the oldest queued block on
// overflow and counts it as an underrun-avoidance drop.
func (r *RF) Transmit(buf IQBuffer) {
	if r.txRing.push(buf) {
		r.logger.Warn("tx ring overflow, dropped oldest block")
		metrics.TransportDrops.Inc()
	}
}

// WaitForSpace blocks until the TX ring has room for another block or ctx
// is cancelled, so a producer can pace itself against how fast the TX peer
// is actually pulling samples rather than a fixed wall-clock period.
func (r *RF) WaitForSpace(ctx context.Context) error {
	return r.txRing.waitForSpace(ctx)
}

// Receive returns the channel of uplink sample blocks pulled from the RX
// peer.
func (r *RF) Receive() <-chan IQBuffer {
	return r.rxOut
}

// Stats returns a point-in-time snapshot of the transport counters.
func (r *RF) Stats() Stats {
	return Stats{
		TXSamples:    r.txSamples.Load(),
		RXSamples:    r.rxSamples.Load(),
		TXUnderruns:  r.txUnderruns.Load(),
		RXOverruns:   r.rxOverruns.Load(),
		TXLatePacket: r.txLatePacket.Load(),
		RXLatePacket: r.rxLatePacket.Load(),
	}
}

func (r *RF) runTXServer(ctx context.Context, errCh chan<- error) {
	listener, err := net.Listen("tcp", r.cfg.TXListenAddr)
	if err != nil {
		errCh <- fmt.Errorf("tx listen %s: %w", r.cfg.TXListenAddr, err)
		return
	}
	r.logger.Info("rf tx server listening", zap.String("addr", r.cfg.TXListenAddr))

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Warn("tx accept failed", zap.Error(err))
			continue
		}
		go r.serveTXConn(ctx, conn)
	}
}

func (r *RF) serveTXConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	req := make([]byte, 1)

	for {
		if ctx.Err() != nil {
			return
		}
		if _, err := conn.Read(req); err != nil {
			return
		}

		buf, ok := r.txRing.pop()
		var payload []byte
		if ok {
			r.txSamples.Add(uint64(len(buf.Samples)))
			payload = encodeIQ(buf.Samples)
		} else {
			r.txUnderruns.Add(1)
			metrics.TransportUnderruns.Inc()
			payload = make([]byte, r.cfg.BlockSamples*8)
		}

		header := make([]byte, 12)
		binary.LittleEndian.PutUint32(header, uint32(len(payload)))
		binary.LittleEndian.PutUint64(header[4:], timestampOrZero(buf, ok))

		if _, err := conn.Write(header); err != nil {
			return
		}
		if _, err := conn.Write(payload); err != nil {
			return
		}
	}
}

func timestampOrZero(buf IQBuffer, ok bool) uint64 {
	if !ok {
		return 0
	}
	return buf.Timestamp
}

func (r *RF) runRXClient(ctx context.Context, errCh chan<- error) {
	ticker := time.NewTicker(r.cfg.RXPollInterval)
	defer ticker.Stop()

	var conn net.Conn
	for {
		select {
		case <-ctx.Done():
			if conn != nil {
				conn.Close()
			}
			return
		case <-ticker.C:
			var err error
			if conn == nil {
				conn, err = net.DialTimeout("tcp", r.cfg.RXDialAddr, time.Second)
				if err != nil {
					r.logger.Debug("rx dial failed, will retry", zap.Error(err))
					continue
				}
				r.logger.Info("rf rx client connected", zap.String("addr", r.cfg.RXDialAddr))
			}

			buf, err := r.requestRXBlock(conn)
			if err != nil {
				r.logger.Warn("rx request failed, reconnecting", zap.Error(err))
				conn.Close()
				conn = nil
				continue
			}

			r.rxSamples.Add(uint64(len(buf.Samples)))
			select {
			case r.rxOut <- buf:
			default:
				r.rxOverruns.Add(1)
				<-r.rxOut
				r.rxOut <- buf
			}
		}
	}
}

func (r *RF) requestRXBlock(conn net.Conn) (IQBuffer, error) {
	if _, err := conn.Write([]byte{requestByte}); err != nil {
		return IQBuffer{}, err
	}

	header := make([]byte, 12)
	if _, err := readFull(conn, header); err != nil {
		return IQBuffer{}, err
	}
	length := binary.LittleEndian.Uint32(header)
	timestamp := binary.LittleEndian.Uint64(header[4:])

	payload := make([]byte, length)
	if _, err := readFull(conn, payload); err != nil {
		return IQBuffer{}, err
	}

	return IQBuffer{Samples: decodeIQ(payload), Timestamp: timestamp}, nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
