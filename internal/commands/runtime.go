package commands

import (
	"context"
	"time"
)

// DefaultCommandTimeout bounds a command unless the handler overrides it.
// Space syncs disable it and rely on sync.timeout instead.
const DefaultCommandTimeout = 30 * time.Second

// commandContext returns the context a command runs under. A nil ctx becomes
// context.Background and a non-positive timeout leaves the deadline alone.
func commandContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
