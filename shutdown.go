package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// shutdownStep releases one resource during shutdown.
type shutdownStep struct {
	name string
	run  func(ctx context.Context) error
}

// shutdownInOrder runs steps one after another so that nothing is closed
// while an earlier step may still use it. A failing step is logged and the
// remaining steps still run.
func shutdownInOrder(logger *slog.Logger, steps ...shutdownStep) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var errs []error
		for _, step := range steps {
			if err := step.run(ctx); err != nil {
				logger.Error("Shutdown step failed", "step", step.name, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
				continue
			}
			logger.Info("Shutdown step completed", "step", step.name)
		}
		return errors.Join(errs...)
	}
}
