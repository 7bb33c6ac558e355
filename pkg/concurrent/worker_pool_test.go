package concurrent

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	jobs := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	results := Run(context.Background(), 3, jobs, func(ctx context.Context, job int) int {
		return job * job
	})

	sort.Ints(results)
	assert.Equal(t, []int{1, 4, 9, 16, 25, 36, 49, 64, 81, 100}, results)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := Run(ctx, 2, []int{1, 2, 3}, func(ctx context.Context, job int) int {
		calls.Add(1)
		return job
	})

	assert.Empty(t, results)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWorkerPoolNonPositiveWorkers(t *testing.T) {
	results := Run(context.Background(), 0, []string{"a", "b"}, func(ctx context.Context, job string) string {
		return job + job
	})
	sort.Strings(results)
	assert.Equal(t, []string{"aa", "bb"}, results)
}
