package ngap

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildNGSetupRequestHeader(t *testing.T) {
	c := NewClient(Config{
		GNBID: 0x19B,
		PLMN:  [3]byte{0x02, 0xF8, 0x39},
		TAC:   7,
	}, zap.NewNop())

	req := c.buildNGSetupRequest()
	require.GreaterOrEqual(t, len(req), 4)
	assert.Equal(t, byte(pduTypeInitiatingMessage), req[0])
	assert.Equal(t, byte(procedureNGSetup), req[1])
	assert.Equal(t, byte(len(req)-4), req[3])
}

func TestSetupSucceedsAgainstFakeAMF(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 256)
		conn.Read(buf)
		conn.Write([]byte{pduTypeSuccessfulOutcome, procedureNGSetup, 0x00, 0x00})
	}()

	config := DefaultConfig()
	config.AMFAddr = ln.Addr().String()
	config.GNBID = 0x19B
	config.PLMN = [3]byte{0x02, 0xF8, 0x39}
	config.TAC = 7
	config.DialTimeout = time.Second
	config.ResponseTimeout = time.Second

	c := NewClient(config, zap.NewNop())
	result, err := c.Setup(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Succeeded)
}

func TestSetupReportsRejection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 256)
		conn.Read(buf)
		conn.Write([]byte{pduTypeUnsuccessfulOutcome, procedureNGSetup, 0x00, 0x00})
	}()

	config := DefaultConfig()
	config.AMFAddr = ln.Addr().String()
	config.DialTimeout = time.Second
	config.ResponseTimeout = time.Second

	c := NewClient(config, zap.NewNop())
	result, err := c.Setup(context.Background())
	assert.Error(t, err)
	assert.False(t, result.Succeeded)
}

func TestSetupFailsWhenAMFUnreachable(t *testing.T) {
	config := DefaultConfig()
	config.AMFAddr = "127.0.0.1:1"
	config.DialTimeout = 200 * time.Millisecond

	c := NewClient(config, zap.NewNop())
	_, err := c.Setup(context.Background())
	assert.Error(t, err)
}
