// Package framer implements the length-prefixed message framer: a
// single-threaded state machine that reassembles whole frames from a
// byte stream, preserving message boundaries across arbitrary TCP
// segmentation, grounded on message_receiver.hpp's MessageReceiver.
package framer

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OwlPlatform/owl-common/errors"
	"github.com/OwlPlatform/owl-common/transport/socket"
)

const (
	// availablePollInterval is Available's bounded-wait receive timeout.
	availablePollInterval = 10 * time.Millisecond
	// nextSleepInterval is Next's internal would-block sleep.
	nextSleepInterval = 1 * time.Millisecond
	// readChunkSize bounds a single underlying Receive call.
	readChunkSize = 4096
)

// Framer reassembles length-prefixed frames from an owning socket.Socket,
// holding a mutable byte accumulator (pending) of bytes received but not
// yet consumed as a whole frame. A Framer serializes concurrent callers
// via an internal mutex, mirroring message_receiver.hpp's sock_mutex;
// callers that need higher concurrency must use separate connections.
type Framer struct {
	mu      sync.Mutex
	sock    *socket.Socket
	pending []byte
}

// New wraps sock in a Framer.
func New(sock *socket.Socket) *Framer {
	return &Framer{sock: sock}
}

// hasFullFrame reports whether pending already holds a complete frame:
// at least 4 bytes, and at least 4+declared_length bytes. Caller must
// hold f.mu.
func (f *Framer) hasFullFrame() bool {
	if len(f.pending) < 4 {
		return false
	}
	declared := binary.BigEndian.Uint32(f.pending[0:4])
	return uint64(len(f.pending)) >= uint64(declared)+4
}

// splitFrame removes and returns the first complete frame from pending,
// retaining the remainder. Caller must hold f.mu and have already
// confirmed hasFullFrame().
func (f *Framer) splitFrame() []byte {
	declared := binary.BigEndian.Uint32(f.pending[0:4])
	total := int(declared) + 4
	frame := make([]byte, total)
	copy(frame, f.pending[:total])
	remainder := make([]byte, len(f.pending)-total)
	copy(remainder, f.pending[total:])
	f.pending = remainder
	return frame
}

// fillOnce performs one bounded-wait receive and appends whatever
// arrived to pending. Caller must hold f.mu.
func (f *Framer) fillOnce(timeout time.Duration) (read bool, err error) {
	ready, err := f.sock.InputReady(timeout)
	if err != nil {
		return false, err
	}
	if !ready {
		return false, nil
	}
	buf := make([]byte, readChunkSize)
	n, err := f.sock.Receive(buf)
	if n > 0 {
		f.pending = append(f.pending, buf[:n]...)
		return true, nil
	}
	if err != nil {
		if errors.IsTransient(err) {
			return false, nil
		}
		return false, err
	}
	// ready with zero bytes and no error means the peer performed an
	// orderly shutdown (socket.Socket.Receive's convention); surface it
	// so callers stop polling a dead connection instead of spinning.
	return false, errors.WrapFatal(errors.ErrConnectionLost, "Framer", "fillOnce", "peer closed connection")
}

// Available reports whether a full frame is ready to be retrieved
// without blocking for long: if pending already holds one, it returns
// true immediately; otherwise it performs one bounded-wait receive
// (availablePollInterval) and reports whether that completed a frame.
// It respects ctx: if already canceled on entry, it does no I/O and
// returns false, nil. A peer-closed or hard I/O error is returned as err.
func (f *Framer) Available(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ctx.Err() != nil {
		return false, nil
	}
	if f.hasFullFrame() {
		return true, nil
	}
	if _, err := f.fillOnce(availablePollInterval); err != nil {
		return false, err
	}
	return f.hasFullFrame(), nil
}

// AvailableInterruptible is Available's boolean-interrupt-flag form,
// preserving the original API's documented signature for callers
// migrating from it. interrupted is read via atomic.Bool.Load since
// a plain bool read concurrently from another goroutine would be a data
// race; set it with interrupted.Store(true) to request cancellation.
func (f *Framer) AvailableInterruptible(interrupted *atomic.Bool) (bool, error) {
	if interrupted != nil && interrupted.Load() {
		return false, nil
	}
	return f.Available(context.Background())
}

// Next blocks (with internal sleeps on would-block) until pending holds
// a complete frame or ctx is done. When complete, it splits off exactly
// the first length+4 bytes as the returned frame and retains the
// remainder in pending. On cancellation it returns a nil slice and a
// nil error — an empty buffer, not a failure.
//
// Ordering guarantee: frames are delivered in the order their
// length-prefix bytes were received; Next never returns a partial frame
// and never discards a complete one.
func (f *Framer) Next(ctx context.Context) ([]byte, error) {
	for {
		f.mu.Lock()
		if f.hasFullFrame() {
			frame := f.splitFrame()
			f.mu.Unlock()
			return frame, nil
		}
		f.mu.Unlock()

		if ctx.Err() != nil {
			return nil, nil
		}

		f.mu.Lock()
		read, err := f.fillOnce(availablePollInterval)
		hasFrame := f.hasFullFrame()
		var frame []byte
		if hasFrame {
			frame = f.splitFrame()
		}
		f.mu.Unlock()

		if hasFrame {
			return frame, nil
		}
		if err != nil {
			return nil, err
		}
		if !read {
			select {
			case <-ctx.Done():
				return nil, nil
			case <-time.After(nextSleepInterval):
			}
		}
	}
}

// NextInterruptible is Next's boolean-interrupt-flag form. Setting
// interrupted causes a prompt return with a nil frame, without draining
// pending.
func (f *Framer) NextInterruptible(interrupted *atomic.Bool) ([]byte, error) {
	for {
		if interrupted != nil && interrupted.Load() {
			return nil, nil
		}

		f.mu.Lock()
		if f.hasFullFrame() {
			frame := f.splitFrame()
			f.mu.Unlock()
			return frame, nil
		}
		read, err := f.fillOnce(availablePollInterval)
		var frame []byte
		hasFrame := f.hasFullFrame()
		if hasFrame {
			frame = f.splitFrame()
		}
		f.mu.Unlock()

		if hasFrame {
			return frame, nil
		}
		if err != nil {
			return nil, err
		}
		if !read {
			time.Sleep(nextSleepInterval)
		}
	}
}

// Pending returns a copy of the current accumulator contents, useful for
// tests and diagnostics. It never returns the live slice.
func (f *Framer) Pending() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.pending))
	copy(out, f.pending)
	return out
}
