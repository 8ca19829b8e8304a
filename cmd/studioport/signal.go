package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
)

// SignalHandler cancels its context on SIGINT or SIGTERM.
type SignalHandler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	sigChan chan os.Signal
	wg      sync.WaitGroup
	once    sync.Once
}

func NewSignalHandler(ctx context.Context) *SignalHandler {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	return &SignalHandler{
		ctx:     ctx,
		cancel:  cancel,
		sigChan: sigChan,
	}
}

func (s *SignalHandler) Context() context.Context {
	return s.ctx
}

func (s *SignalHandler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case sig := <-s.sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
			s.cancel()
		case <-s.ctx.Done():
		}
	}()
}

func (s *SignalHandler) Wait() {
	s.wg.Wait()
}

// Stop unregisters the signal hook and releases the watcher goroutine.
func (s *SignalHandler) Stop() {
	s.once.Do(func() {
		signal.Stop(s.sigChan)
		s.cancel()
		s.wg.Wait()
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
