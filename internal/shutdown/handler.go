// Package shutdown coordinates orderly teardown on SIGINT/SIGTERM.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yourusername/marvin/internal/output"
)

// Handler runs registered cleanup functions when a termination signal
// arrives. Cleanup runs at most once, in registration order, bounded by
// a force timeout.
type Handler struct {
	logger       output.Logger
	mu           sync.Mutex
	cleanups     []func() error
	done         chan struct{}
	signals      chan os.Signal
	forceTimeout time.Duration
	once         sync.Once
}

// NewHandler installs the signal listener.
func NewHandler(logger output.Logger, forceTimeout time.Duration) *Handler {
	h := &Handler{
		logger:       logger,
		done:         make(chan struct{}),
		signals:      make(chan os.Signal, 1),
		forceTimeout: forceTimeout,
	}
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	return h
}

// Register adds a cleanup function. Functions run in registration order.
func (h *Handler) Register(fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanups = append(h.cleanups, fn)
}

// Wait blocks until a termination signal arrives, then shuts down.
func (h *Handler) Wait() {
	sig := <-h.signals
	h.logger.Info("Received signal: %v", sig)
	h.Shutdown()
}

// Shutdown runs the cleanup functions, forcing completion after the
// timeout. Safe to call from any goroutine; only the first call acts.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.logger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), h.forceTimeout)
		defer cancel()

		finished := make(chan struct{})
		go func() {
			h.runCleanups()
			close(finished)
		}()

		select {
		case <-finished:
			h.logger.Success("Shutdown complete")
		case <-ctx.Done():
			h.logger.Warning("Forced shutdown after timeout")
		}

		close(h.done)
	})
}

func (h *Handler) runCleanups() {
	h.mu.Lock()
	funcs := make([]func() error, len(h.cleanups))
	copy(funcs, h.cleanups)
	h.mu.Unlock()

	for i, fn := range funcs {
		if err := fn(); err != nil {
			h.logger.Error("Cleanup %d failed: %v", i+1, err)
		}
	}
}

// Done is closed once shutdown has completed.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Stop detaches the signal listener.
func (h *Handler) Stop() {
	signal.Stop(h.signals)
}
