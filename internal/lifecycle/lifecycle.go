// Package lifecycle runs a set of long-running components until a signal,
// context cancellation, or the first component finishing, then stops the
// rest in reverse order.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Run blocks until ctx is cancelled or
// the work is done.
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc adapts a function into the Service interface.
type ServiceFunc func(ctx context.Context) error

// Run calls f.
func (f ServiceFunc) Run(ctx context.Context) error { return f(ctx) }

// Lifecycle manages the startup and shutdown of multiple services.
// Services are started in order and stopped in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
	// Signals trigger shutdown; nil uses SIGINT and SIGTERM.
	Signals []os.Signal
}

type namedService struct {
	name    string
	service Service
}

type running struct {
	name   string
	cancel context.CancelFunc
	done   chan error
	start  time.Time
}

// New creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service for lifecycle management.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts all services and blocks until a termination signal, ctx
// cancellation, or any service returning. The remaining services are then
// cancelled in reverse order and awaited.
//
// Postcondition: All services have returned. The result joins every service
// error other than context cancellation.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	signals := l.Signals
	if signals == nil {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	ctx, stopSignals := signal.NotifyContext(ctx, signals...)
	defer stopSignals()

	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	anyDone := make(chan string, len(services))
	runs := make([]*running, 0, len(services))
	for _, ns := range services {
		sctx, cancel := context.WithCancel(ctx)
		r := &running{name: ns.name, cancel: cancel, done: make(chan error, 1), start: time.Now()}
		runs = append(runs, r)
		l.logger.Info("starting service", zap.String("service", ns.name))
		go func(svc Service) {
			r.done <- svc.Run(sctx)
			anyDone <- r.name
		}(ns.service)
	}

	l.logger.Info("all services started",
		zap.Int("count", len(runs)),
		zap.Duration("startup", time.Since(start)),
	)

	if len(runs) > 0 {
		select {
		case name := <-anyDone:
			l.logger.Info("service finished, shutting down", zap.String("service", name))
		case <-ctx.Done():
			l.logger.Info("context cancelled, shutting down")
		}
	}

	err := l.shutdown(runs)
	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return err
}

func (l *Lifecycle) shutdown(runs []*running) error {
	var errs []error
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		r.cancel()
		err := <-r.done
		if err != nil && !errors.Is(err, context.Canceled) {
			l.logger.Error("service failed",
				zap.String("service", r.name),
				zap.Error(err),
				zap.Duration("uptime", time.Since(r.start)),
			)
			errs = append(errs, fmt.Errorf("service %s: %w", r.name, err))
			continue
		}
		l.logger.Info("service stopped",
			zap.String("service", r.name),
			zap.Duration("uptime", time.Since(r.start)),
		)
	}
	return errors.Join(errs...)
}
