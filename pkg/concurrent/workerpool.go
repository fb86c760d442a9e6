// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package concurrent provides a bounded worker pool for fanning out
// independent units of work.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs functions with a bounded number of concurrent goroutines.
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a pool running at most workerCount functions at once.
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{workerCount: workerCount}
}

// Run executes all functions and returns the first error, cancelling the
// remaining work when one fails.
func (wp *WorkerPool) Run(ctx context.Context, functions ...func() error) error {
	if len(functions) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)
	for _, fn := range functions {
		fn := fn
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return fn()
		})
	}
	return g.Wait()
}

// RunAll executes all functions to completion regardless of individual
// failures and returns the non-nil errors encountered.
func (wp *WorkerPool) RunAll(ctx context.Context, functions ...func() error) []error {
	if len(functions) == 0 {
		return nil
	}

	errorChan := make(chan error, len(functions))
	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)
	for _, fn := range functions {
		fn := fn
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errorChan <- err
				return nil
			}
			if err := fn(); err != nil {
				errorChan <- err
			}
			return nil
		})
	}
	_ = g.Wait()
	close(errorChan)

	var errs []error
	for err := range errorChan {
		errs = append(errs, err)
	}
	return errs
}
