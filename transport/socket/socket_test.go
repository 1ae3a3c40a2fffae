package socket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OwlPlatform/owl-common/transport/socket"
)

func listenAndDial(t *testing.T) (*socket.Listener, *socket.Socket, *socket.Socket) {
	t.Helper()
	ln, err := socket.Listen("127.0.0.1:0")
	require.NoError(t, err)

	accepted := make(chan *socket.Socket, 1)
	go func() {
		s, err := ln.Accept()
		require.NoError(t, err)
		accepted <- s
	}()

	client, err := socket.Dial(ln.Addr().String())
	require.NoError(t, err)

	server := <-accepted
	return ln, client, server
}

func TestSendReceiveRoundTrip(t *testing.T) {
	ln, client, server := listenAndDial(t)
	defer ln.Close()
	defer client.Close()
	defer server.Close()

	require.NoError(t, client.Send([]byte("hello world")))

	require.Eventually(t, func() bool {
		ready, err := server.InputReady(50 * time.Millisecond)
		require.NoError(t, err)
		return ready
	}, time.Second, 5*time.Millisecond)

	buf := make([]byte, 64)
	n, err := server.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(buf[:n]))
}

func TestInputReadyDoesNotConsumeBytes(t *testing.T) {
	ln, client, server := listenAndDial(t)
	defer ln.Close()
	defer client.Close()
	defer server.Close()

	require.NoError(t, client.Send([]byte("abc")))

	require.Eventually(t, func() bool {
		ready, err := server.InputReady(50 * time.Millisecond)
		require.NoError(t, err)
		return ready
	}, time.Second, 5*time.Millisecond)

	// A second InputReady must still see the data: Peek must not consume it.
	ready, err := server.InputReady(50 * time.Millisecond)
	require.NoError(t, err)
	require.True(t, ready)

	buf := make([]byte, 64)
	n, err := server.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, "abc", string(buf[:n]))
}

func TestInputReadyTimesOutOnIdleSocket(t *testing.T) {
	ln, client, server := listenAndDial(t)
	defer ln.Close()
	defer client.Close()
	defer server.Close()

	ready, err := server.InputReady(20 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, ready)
}

func TestDialContextHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := socket.DialContext(ctx, "127.0.0.1:1")
	require.Error(t, err)
}

func TestCloseUnblocksPeerReceive(t *testing.T) {
	ln, client, server := listenAndDial(t)
	defer ln.Close()
	defer server.Close()

	require.NoError(t, client.Close())

	require.Eventually(t, func() bool {
		ready, err := server.InputReady(50 * time.Millisecond)
		return err == nil && ready
	}, time.Second, 5*time.Millisecond)

	buf := make([]byte, 64)
	n, err := server.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
