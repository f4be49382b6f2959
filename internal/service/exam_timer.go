package service

import (
	"context"
	"time"
)

// examTimer drives one exam session. The tick callback runs under the session lock and
// returns false to end the loop.
type examTimer struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func startExamTimer(interval time.Duration, onTick func(t *examTimer) bool) *examTimer {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &examTimer{ctx: ctx, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !onTick(t) {
					t.cancel()
					return
				}
			}
		}
	}()
	return t
}

// stop never waits for the goroutine: it may be blocked on the session lock the
// caller holds. A stopped timer's pending tick sees stopped() and does nothing.
func (t *examTimer) stop() {
	if t != nil {
		t.cancel()
	}
}

func (t *examTimer) stopped() bool {
	return t.ctx.Err() != nil
}
