// Package socket implements the thin duplex-byte abstraction atop
// net.Conn: connect-with-timeout, accept (kernel default backlog),
// partial-write-safe Send, best-effort Receive, and an InputReady poll,
// grounded on simple_sockets.hpp's ClientSocket/ServerSocket.
package socket

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/OwlPlatform/owl-common/errors"
)

const (
	// ConnectTimeout bounds connection establishment.
	ConnectTimeout = 5 * time.Second
	// WritePollTimeout is the per-chunk poll guard on Send.
	WritePollTimeout = 1 * time.Second
	// ListenBacklog is the nominal accept backlog. Listen does not pass it
	// to the kernel; the kernel default backlog applies.
	ListenBacklog = 10
)

// Socket is a duplex byte channel over a single net.Conn. It is not safe
// for concurrent Send/Receive from multiple goroutines beyond the
// guarantee that the underlying net.Conn provides; callers needing
// higher concurrency should use separate connections. A Socket is
// movable (assign the value)
// but not copyable in spirit — Close must be called exactly once, by
// whichever goroutine owns it last.
type Socket struct {
	conn net.Conn
	r    *bufio.Reader
}

// New wraps an already-established net.Conn as a Socket. Reads go
// through a buffered reader so InputReady can peek at the next byte
// without consuming it — net.Conn itself offers no such peek.
func New(conn net.Conn) *Socket {
	return &Socket{conn: conn, r: bufio.NewReader(conn)}
}

// Dial connects to address (host:port, IPv4 or IPv6) with a bounded
// wait. DNS/connect errors are fatal: the caller should not retry a
// malformed address or a closed port silently.
func Dial(address string) (*Socket, error) {
	conn, err := net.DialTimeout("tcp", address, ConnectTimeout)
	if err != nil {
		return nil, errors.WrapFatal(err, "socket", "Dial", "connect to "+address)
	}
	return New(conn), nil
}

// DialContext connects, honoring ctx cancellation in addition to the
// fixed ConnectTimeout.
func DialContext(ctx context.Context, address string) (*Socket, error) {
	var d net.Dialer
	d.Timeout = ConnectTimeout
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.WrapFatal(err, "socket", "DialContext", "connect to "+address)
	}
	return New(conn), nil
}

// InputReady returns true iff a Receive would not block, waiting up to
// timeout. A peer's orderly shutdown reports ready (the following Receive
// returns 0, nil); any other socket error closes the socket and returns
// a fatal ErrConnectionLost.
func (s *Socket) InputReady(timeout time.Duration) (bool, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return false, errors.WrapTransient(err, "Socket", "InputReady", "set read deadline")
	}
	defer s.conn.SetReadDeadline(time.Time{})

	_, err := s.r.Peek(1)
	if err == nil {
		return true, nil
	}
	if err == io.EOF {
		// Peer performed an orderly shutdown; a subsequent Receive will
		// observe it as (0, nil) rather than blocking, so report ready.
		return true, nil
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return false, nil
	}
	_ = s.Close()
	return false, errors.WrapFatal(errors.ErrConnectionLost, "Socket", "InputReady", "poll read")
}

// Receive performs a non-blocking best-effort fill of buf. It returns
// the number of bytes read; 0 with a nil error means the peer performed
// an orderly shutdown ("peer-closed").
func (s *Socket) Receive(buf []byte) (int, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(10 * time.Millisecond)); err != nil {
		return 0, errors.WrapTransient(err, "Socket", "Receive", "set read deadline")
	}
	defer s.conn.SetReadDeadline(time.Time{})

	n, err := s.r.Read(buf)
	if err != nil {
		if err == io.EOF {
			return n, nil
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, errors.ErrTemporarilyUnavailable
		}
		return n, errors.WrapFatal(errors.ErrConnectionLost, "Socket", "Receive", "read from peer")
	}
	return n, nil
}

// Send writes all of buf, partial-write-safe: it keeps writing until the
// whole buffer is transferred, applying a WritePollTimeout poll guard
// per chunk. Sustained unavailability fails with
// ErrTemporarilyUnavailable; a broken pipe cleans up and fails with a
// fatal ErrConnectionLost.
func (s *Socket) Send(buf []byte) error {
	total := 0
	for total < len(buf) {
		if err := s.conn.SetWriteDeadline(time.Now().Add(WritePollTimeout)); err != nil {
			return errors.WrapTransient(err, "Socket", "Send", "set write deadline")
		}
		n, err := s.conn.Write(buf[total:])
		total += n
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return errors.WrapTransient(errors.ErrTemporarilyUnavailable, "Socket", "Send", "write poll expired")
			}
			_ = s.Close()
			return errors.WrapFatal(errors.ErrConnectionLost, "Socket", "Send", "write to peer")
		}
	}
	_ = s.conn.SetWriteDeadline(time.Time{})
	return nil
}

// Close drains nothing; Go's net.Conn.Close is sufficient since the OS
// reclaims the fd, unlike the original socket wrapper's destructor-time
// read-drain. It closes the underlying connection.
func (s *Socket) Close() error {
	if err := s.conn.Close(); err != nil {
		return errors.WrapTransient(err, "Socket", "Close", "close connection")
	}
	return nil
}

// RemoteAddr returns the address of the peer.
func (s *Socket) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}
