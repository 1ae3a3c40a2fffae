package worker

import "errors"

var (
	// ErrPoolNotStarted is returned by Submit before Start has run.
	ErrPoolNotStarted = errors.New("frame dispatcher not started")

	// ErrPoolStopped is returned by Submit after Stop has run.
	ErrPoolStopped = errors.New("frame dispatcher stopped")

	// ErrPoolAlreadyStarted is returned by Start called a second time.
	ErrPoolAlreadyStarted = errors.New("frame dispatcher already started")

	// ErrQueueFull is returned by Submit when the dispatch queue has no
	// room left for the frame.
	ErrQueueFull = errors.New("frame dispatcher queue full")

	// ErrNilProcessor is the panic value for NewFrameDispatcher called
	// with a nil process function.
	ErrNilProcessor = errors.New("frame processor cannot be nil")

	// ErrStopTimeout is returned by Stop when workers have not finished
	// draining the queue within the given timeout.
	ErrStopTimeout = errors.New("timeout waiting for frame dispatcher workers to stop")
)
