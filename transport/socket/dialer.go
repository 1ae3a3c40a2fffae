package socket

import (
	"context"

	"github.com/OwlPlatform/owl-common/pkg/retry"
)

// Dialer connects with exponential-backoff retry, wrapping pkg/retry for
// peers that should ride out transient DNS or connect-refused failures
// instead of failing the first attempt.
type Dialer struct {
	config retry.Config
}

// NewDialer returns a Dialer using cfg's retry policy.
func NewDialer(cfg retry.Config) *Dialer {
	return &Dialer{config: cfg}
}

// NewQuickDialer returns a Dialer using retry.Quick()'s policy (10
// attempts, 50ms-1s, 1.5x backoff) — suitable for sensors/aggregators
// reconnecting to a nearby peer.
func NewQuickDialer() *Dialer {
	return &Dialer{config: retry.Quick()}
}

// NewPersistentDialer returns a Dialer using retry.Persistent()'s policy
// (30 attempts, 200ms-10s, 2.0x backoff) — suitable for long-lived
// solver/world-model connections that should keep trying across an
// extended outage.
func NewPersistentDialer() *Dialer {
	return &Dialer{config: retry.Persistent()}
}

// Dial connects to address, retrying every failed attempt, whatever its
// error class, per the Dialer's configured policy.
func (d *Dialer) Dial(ctx context.Context, address string) (*Socket, error) {
	return retry.DoWithResult(ctx, d.config, func() (*Socket, error) {
		return DialContext(ctx, address)
	})
}
