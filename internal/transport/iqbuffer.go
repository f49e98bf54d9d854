// Package transport implements the RF sample-exchange transport: a
// REQ/REP-style IQ sample exchange carried over plain TCP (internal/transport
// substitutes for the ZMQ REQ/REP sockets of interfaces/src/zmq_rf.rs — no
// ZMQ Go binding exists anywhere in the retrieved example pack, and
// fabricating one behind a replace directive is prohibited; see DESIGN.md),
// a bounded TX ring, and a dedicated I/O worker per direction.
package transport

import (
	"encoding/binary"
	"math"
)

// IQBuffer is one block of complex baseband samples with its sample-clock
// timestamp.
type IQBuffer struct {
	Samples   []complex128
	Timestamp uint64
}

// encodeIQ serializes samples as little-endian float32 I/Q pairs, matching
// the raw cf_t wire format of the original ZMQ RF driver.
func encodeIQ(samples []complex128) []byte {
	out := make([]byte, len(samples)*8)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*8:], math.Float32bits(float32(real(s))))
		binary.LittleEndian.PutUint32(out[i*8+4:], math.Float32bits(float32(imag(s))))
	}
	return out
}

// decodeIQ parses a raw cf_t byte buffer into complex samples.
func decodeIQ(b []byte) []complex128 {
	n := len(b) / 8
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		re := math.Float32frombits(binary.LittleEndian.Uint32(b[i*8:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(b[i*8+4:]))
		out[i] = complex(float64(re), float64(im))
	}
	return out
}
