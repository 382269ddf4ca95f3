package engine

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/olist/pkg/core"
)

// Run builds the named derivations and records the run in the state store
// when one is configured. The returned run is nil without a store.
func (e *Engine) Run(ctx context.Context, names ...string) (*Result, *core.Run, error) {
	targets, err := e.resolve(names)
	if err != nil {
		return nil, nil, err
	}

	if e.store == nil {
		res, err := e.Build(ctx, targets...)
		return res, nil, err
	}

	run, err := e.store.CreateRun(targets, e.filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create run: %w", err)
	}
	e.logger.Info("starting run", "run_id", run.ID, "derivations", targets)

	res, buildErr := e.Build(ctx, targets...)
	if buildErr != nil {
		e.logger.Info("run failed", "run_id", run.ID, "status", core.RunStatusFailed, "error", buildErr.Error())
		_ = e.store.CompleteRun(run.ID, core.RunStatusFailed, nil, buildErr.Error())
	} else {
		e.logger.Info("run completed", "run_id", run.ID, "status", core.RunStatusCompleted)
		_ = e.store.CompleteRun(run.ID, core.RunStatusCompleted, res.RowCounts(), "")
	}

	if latest, err := e.store.GetRun(run.ID); err == nil {
		run = latest
	}
	return res, run, buildErr
}

// Close releases the state store.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Close(); err != nil {
		return fmt.Errorf("failed to close state store: %w", err)
	}
	return nil
}
