package core

import (
	"context"
	"log/slog"
)

// RequestLock provides context-aware locking for serializing request processing
type RequestLock struct {
	sem chan struct{}
}

// NewRequestLock creates a new request lock
func NewRequestLock() *RequestLock {
	return &RequestLock{
		sem: make(chan struct{}, 1),
	}
}

// LockWithContext attempts to acquire the lock, respecting context cancellation
func (c *RequestLock) LockWithContext(ctx context.Context) bool {
	select {
	case c.sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Unlock releases the lock
func (c *RequestLock) Unlock() {
	select {
	case <-c.sem:
	default:
		// Already unlocked, avoid panic
	}
}

// With acquires the lock and runs onSuccess while holding it. If the lock
// cannot be acquired before ctx is done, onTimeout is called (if provided).
func (c *RequestLock) With(ctx context.Context, logger *slog.Logger, operation string, onSuccess func(), onTimeout func()) {
	if logger == nil {
		logger = GetLogger()
	}

	logger.Debug("lock_acquiring", "operation", operation)
	if !c.LockWithContext(ctx) {
		logger.Warn("lock_timeout", "operation", operation)
		if onTimeout != nil {
			onTimeout()
		}
		return
	}
	logger.Debug("lock_acquired", "operation", operation)
	defer func() {
		logger.Debug("lock_released", "operation", operation)
		c.Unlock()
	}()

	onSuccess()
}
