package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dwizi/quantumx/internal/heartbeat"
)

const shutdownTimeout = 10 * time.Second

func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("quantumx starting",
		"addr", r.cfg.HTTPAddr,
		"session_backend", r.cfg.SessionBackend,
		"llm_provider", r.cfg.LLMProvider,
		"env_file_loaded", r.cfg.EnvFileLoaded,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	if r.watcher != nil {
		group.Go(func() error {
			return runMonitored(groupCtx, r.heartbeat, heartbeat.ComponentWatcher, r.watcher.Start)
		})
	}
	group.Go(func() error {
		return runMonitored(groupCtx, r.heartbeat, heartbeat.ComponentHTTP, func(context.Context) error {
			err := r.httpServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	err := group.Wait()
	r.logger.Info("quantumx stopped")
	return err
}

func runMonitored(
	ctx context.Context,
	reporter heartbeat.Reporter,
	component string,
	run func(context.Context) error,
) error {
	if run == nil {
		return nil
	}
	reporter.Starting(component, "starting")
	reporter.Beat(component, "running")

	err := run(ctx)
	if err != nil && ctx.Err() == nil {
		reporter.Degrade(component, "component failed", err)
		return err
	}
	reporter.Stopped(component, "stopped")
	return err
}
