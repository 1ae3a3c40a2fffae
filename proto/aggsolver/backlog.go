package aggsolver

import (
	"sync"

	cerrors "github.com/OwlPlatform/owl-common/errors"
	"github.com/OwlPlatform/owl-common/metric"
	"github.com/OwlPlatform/owl-common/wire/types"
)

// SampleBacklog queues server_sample payloads awaiting transmission to a
// solver that is reading slower than an aggregator is producing. It is a
// fixed-capacity ring of Samples: once it reaches capacity, the oldest
// queued sample is dropped and Overrun reports true so the caller can
// emit a buffer_overrun frame, mirroring how a stalled-peer sender queue
// sheds its oldest backlog rather than growing unbounded.
type SampleBacklog struct {
	mu      sync.Mutex
	samples []types.Sample
	head    int // next write index
	tail    int // next read index
	size    int
	overran bool
	closed  bool
	metrics *backlogMetrics
}

// NewSampleBacklog returns a SampleBacklog holding up to capacity samples.
// When registry is non-nil, backlog occupancy and drop counts are exported
// as Prometheus metrics under the "aggsolver_backlog" prefix.
func NewSampleBacklog(capacity int, registry *metric.MetricsRegistry) (*SampleBacklog, error) {
	if capacity <= 0 {
		capacity = 1
	}

	b := &SampleBacklog{
		samples: make([]types.Sample, capacity),
	}

	if registry != nil {
		m, err := newBacklogMetrics(registry, "aggsolver_backlog")
		if err != nil {
			return nil, err
		}
		b.metrics = m
	}

	return b, nil
}

// Push enqueues s, dropping the oldest queued sample if the backlog is
// full.
func (b *SampleBacklog) Push(s types.Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return cerrors.WrapInvalid(cerrors.ErrClosed, "SampleBacklog", "Push", "backlog closed")
	}

	capacity := len(b.samples)
	if b.size == capacity {
		// Drop the oldest queued sample to make room.
		b.tail = (b.tail + 1) % capacity
		b.size--
		b.overran = true
		if b.metrics != nil {
			b.metrics.recordDrop()
		}
	}

	b.samples[b.head] = s
	b.head = (b.head + 1) % capacity
	b.size++

	if b.metrics != nil {
		b.metrics.recordPush(b.size, capacity)
	}
	return nil
}

// Drain removes and encodes up to max queued samples as server_sample
// frames, in FIFO order.
func (b *SampleBacklog) Drain(max int) [][]byte {
	if max <= 0 {
		return nil
	}

	b.mu.Lock()
	count := max
	if count > b.size {
		count = b.size
	}
	drained := make([]types.Sample, count)
	capacity := len(b.samples)
	for i := 0; i < count; i++ {
		drained[i] = b.samples[b.tail]
		b.samples[b.tail] = types.Sample{}
		b.tail = (b.tail + 1) % capacity
		b.size--
	}
	if b.metrics != nil && count > 0 {
		b.metrics.recordDrain(b.size, capacity)
	}
	b.mu.Unlock()

	frames := make([][]byte, count)
	for i, s := range drained {
		frames[i] = EncodeServerSample(s)
	}
	return frames
}

// Overrun reports whether a sample has been dropped since the last call,
// and clears the flag. A caller observing true should send
// EncodeBufferOverrun() to the peer.
func (b *SampleBacklog) Overrun() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.overran {
		return false
	}
	b.overran = false
	return true
}

// Len returns the number of samples currently queued.
func (b *SampleBacklog) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Close marks the backlog closed; subsequent Push calls fail.
func (b *SampleBacklog) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
