package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Timeout for a single purge pass
const purgeTimeout = 30 * time.Second

// TokenPurger deletes revocation entries whose expiry has passed.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// TokenPurgeWorker periodically prunes blocked_token_list. It runs one pass
// immediately on Start and then every interval until Stop.
type TokenPurgeWorker struct {
	purger   TokenPurger
	interval time.Duration
	log      *logrus.Logger

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

func NewTokenPurgeWorker(purger TokenPurger, interval time.Duration, log *logrus.Logger) *TokenPurgeWorker {
	return &TokenPurgeWorker{
		purger:   purger,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background loop. Calling it twice is a no-op.
func (w *TokenPurgeWorker) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.wg.Add(1)
	go w.loop()
	w.log.Infof("Token purge worker started, interval=%s", w.interval)
}

// Stop gracefully shuts down the worker.
// Safe to call multiple times.
func (w *TokenPurgeWorker) Stop() {
	if w.stopped.CompareAndSwap(false, true) {
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("Token purge worker stopped")
	}
}

func (w *TokenPurgeWorker) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.purgeOnce()
	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.purgeOnce()
		}
	}
}

func (w *TokenPurgeWorker) purgeOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	// stop() should not wait for a slow purge
	go func() {
		select {
		case <-w.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	purged, err := w.purger.PurgeExpiredTokens(ctx)
	if err != nil {
		w.log.Warnf("Failed to purge expired tokens: %+v", err)
		return
	}
	if purged > 0 {
		w.log.Infof("Purged %d expired revoked tokens", purged)
	}
}
