package framer_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OwlPlatform/owl-common/transport/framer"
	"github.com/OwlPlatform/owl-common/transport/socket"
	"github.com/OwlPlatform/owl-common/wire/codec"
)

// TestFramerPreservesBoundariesAcrossArbitraryChunking concatenates three
// frames and delivers them over the wire split into chunks of 1, 7, 3,
// and then the remainder; Next must yield exactly those three frames, in
// order, byte-for-byte.
func TestFramerPreservesBoundariesAcrossArbitraryChunking(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	bodies := [][]byte{
		[]byte("hello"),
		[]byte("a somewhat longer payload body here"),
		[]byte("x"),
	}
	var full []byte
	for _, b := range bodies {
		full = append(full, codec.EncodeFrame(b)...)
	}

	chunkSizes := []int{1, 7, 3}
	go func() {
		off := 0
		i := 0
		for off < len(full) {
			size := len(full) - off
			if i < len(chunkSizes) && chunkSizes[i] < size {
				size = chunkSizes[i]
			}
			clientConn.Write(full[off : off+size])
			off += size
			i++
		}
	}()

	f := framer.New(socket.New(serverConn))
	ctx := context.Background()
	for idx, body := range bodies {
		frame, err := f.Next(ctx)
		require.NoError(t, err)
		require.NotNilf(t, frame, "frame %d", idx)
		require.Equal(t, codec.EncodeFrame(body), frame)
	}
}

func TestAvailableThenNextConsumesSameFrame(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	frameBytes := codec.EncodeFrame([]byte("payload"))
	go clientConn.Write(frameBytes)

	f := framer.New(socket.New(serverConn))
	require.Eventually(t, func() bool {
		ok, err := f.Available(context.Background())
		require.NoError(t, err)
		return ok
	}, time.Second, 5*time.Millisecond)

	got, err := f.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, frameBytes, got)
}

// TestNextContextCanceledDoesNoIO is the interrupt-before-call case: an
// already-canceled context with an empty accumulator returns immediately
// with a nil frame and no error, performing no I/O.
func TestNextContextCanceledDoesNoIO(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	f := framer.New(socket.New(serverConn))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frame, err := f.Next(ctx)
	require.NoError(t, err)
	require.Nil(t, frame)
}

func TestNextInterruptibleStopsWhenFlagSet(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	f := framer.New(socket.New(serverConn))
	var interrupted atomic.Bool
	go func() {
		time.Sleep(20 * time.Millisecond)
		interrupted.Store(true)
	}()

	frame, err := f.NextInterruptible(&interrupted)
	require.NoError(t, err)
	require.Nil(t, frame)
}

func TestAvailableInterruptibleSkipsIOWhenFlagSet(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	f := framer.New(socket.New(serverConn))
	var interrupted atomic.Bool
	interrupted.Store(true)

	ok, err := f.AvailableInterruptible(&interrupted)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestNextOrderingAcrossManySmallFrames is an ordering-guarantee check
// beyond scenario 4's three frames: ten single-byte-body frames fed in a
// single burst must come back out in the order they were sent.
func TestNextOrderingAcrossManySmallFrames(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	var full []byte
	for i := 0; i < 10; i++ {
		full = append(full, codec.EncodeFrame([]byte{byte(i)})...)
	}
	go clientConn.Write(full)

	f := framer.New(socket.New(serverConn))
	for i := 0; i < 10; i++ {
		frame, err := f.Next(context.Background())
		require.NoError(t, err)
		require.Equal(t, codec.EncodeFrame([]byte{byte(i)}), frame)
	}
}
