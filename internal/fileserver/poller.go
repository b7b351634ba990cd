package fileserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stagewave/catalog-sync/internal/pkg/logger"
)

// PollFunc is one polling tick. Errors are logged and do not stop the
// loop; the next tick is a fresh attempt, never a retry of the failed
// one.
type PollFunc func(ctx context.Context) error

// Poller runs a PollFunc on a fixed interval as an explicitly
// cancellable task. Ticks never overlap: the loop is a single
// goroutine, and ticks falling due while one is still running are
// dropped, not queued. Stop cancels the loop and waits for any
// in-flight tick to finish.
type Poller struct {
	interval time.Duration
	fn       PollFunc
	logger   *logger.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewPoller(interval time.Duration, fn PollFunc, log *logger.Logger) *Poller {
	return &Poller{
		interval: interval,
		fn:       fn,
		logger:   log,
	}
}

// Start launches the polling loop. The first tick runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("poller already running")
	}

	p.running = true
	p.stopCh = make(chan struct{})
	p.wg.Add(1)
	go p.loop(ctx)

	return nil
}

// Stop cancels the loop and blocks until the in-flight tick, if any,
// has returned. Safe to call when not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	start := time.Now()
	if err := p.fn(ctx); err != nil {
		p.logger.Warn("poll tick failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
	}
}
