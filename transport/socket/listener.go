package socket

import (
	"net"

	"github.com/OwlPlatform/owl-common/errors"
)

// Listener wraps net.Listener: each accepted connection becomes an
// independent Socket.
type Listener struct {
	ln net.Listener
}

// Listen binds address and starts listening. The accept backlog is the
// kernel default: Go's net package does not expose the listen backlog,
// and ListenBacklog is not passed through.
func Listen(address string) (*Listener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.WrapFatal(err, "socket", "Listen", "bind "+address)
	}
	return &Listener{ln: ln}, nil
}

// Accept blocks until a new connection arrives and wraps it as a Socket.
func (l *Listener) Accept() (*Socket, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, errors.WrapFatal(err, "Listener", "Accept", "accept connection")
	}
	return New(conn), nil
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	if err := l.ln.Close(); err != nil {
		return errors.WrapTransient(err, "Listener", "Close", "close listener")
	}
	return nil
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}
