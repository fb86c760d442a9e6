// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesAllFunctions(t *testing.T) {
	pool := NewWorkerPool(2)

	var counter int64
	functions := make([]func() error, 10)
	for i := range functions {
		functions[i] = func() error {
			atomic.AddInt64(&counter, 1)
			return nil
		}
	}

	require.NoError(t, pool.Run(context.Background(), functions...))
	assert.Equal(t, int64(10), counter)
}

func TestRunReturnsFirstError(t *testing.T) {
	pool := NewWorkerPool(1)
	boom := errors.New("boom")

	err := pool.Run(context.Background(),
		func() error { return nil },
		func() error { return boom },
	)
	assert.ErrorIs(t, err, boom)
}

func TestRunEmpty(t *testing.T) {
	pool := NewWorkerPool(3)
	require.NoError(t, pool.Run(context.Background()))
}

func TestRunAllCollectsErrorsWithoutStopping(t *testing.T) {
	pool := NewWorkerPool(2)

	var counter int64
	errs := pool.RunAll(context.Background(),
		func() error { atomic.AddInt64(&counter, 1); return errors.New("first") },
		func() error { atomic.AddInt64(&counter, 1); return nil },
		func() error { atomic.AddInt64(&counter, 1); return errors.New("second") },
	)

	assert.Equal(t, int64(3), counter)
	assert.Len(t, errs, 2)
}

func TestRunAllCancelledContext(t *testing.T) {
	pool := NewWorkerPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var counter int64
	errs := pool.RunAll(ctx, func() error { atomic.AddInt64(&counter, 1); return nil })

	assert.Zero(t, counter)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestNewWorkerPoolFloorsCount(t *testing.T) {
	pool := NewWorkerPool(0)
	require.NoError(t, pool.Run(context.Background(), func() error { return nil }))
}
