package parallelmap_test

import (
	"context"
	"testing"

	"github.com/eqsat/slotted-egraph/parallelmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double(x int) (int, error) { return x * 2, nil }

func TestSequential_Apply(t *testing.T) {
	var m parallelmap.Sequential[int, int]
	out, err := m.Apply(context.Background(), []int{1, 2, 3}, double)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, out)
}

func TestFixedThread_ApplyMatchesSequential(t *testing.T) {
	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8}
	var seq parallelmap.Sequential[int, int]
	want, err := seq.Apply(context.Background(), inputs, double)
	require.NoError(t, err)

	ft := parallelmap.FixedThread[int, int]{N: 3}
	got, err := ft.Apply(context.Background(), inputs, double)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWorkStealing_ProcessBlocksPreservesOrder(t *testing.T) {
	inputs := []int{1, 2, 3, 4, 5, 6, 7}
	var m parallelmap.WorkStealing[int, int]
	out, err := m.ProcessBlocks(context.Background(), inputs, 2, func(block []int) ([]int, error) {
			rs := make([]int, len(block))
			for i, v := range block {
				rs[i] = v * 10
			}
			return rs, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70}, out)
}

func TestCancelable_ReturnsErrCanceledWithoutRunningInner(t *testing.T) {
	token := parallelmap.NewCancellationToken()
	token.Cancel()

	called := false
	m := parallelmap.Cancelable[int, int](parallelmap.Sequential[int, int]{}, token)
	_, err := m.Apply(context.Background(), []int{1}, func(x int) (int, error) {
			called = true
			return x, nil
	})

	assert.ErrorIs(t, err, parallelmap.ErrCanceled)
	assert.False(t, called)
}

func TestCancellationToken_CancelIsIdempotent(t *testing.T) {
	token := parallelmap.NewCancellationToken()
	assert.False(t, token.IsCanceled())
	token.Cancel()
	token.Cancel()
	assert.True(t, token.IsCanceled())
}

func TestTimed_RecordsOneChildPerCall(t *testing.T) {
	m, report := parallelmap.Timed[int, int](parallelmap.Sequential[int, int]{}, "test")
	_, err := m.Apply(context.Background(), []int{1, 2}, double)
	require.NoError(t, err)
	_, err = m.Apply(context.Background(), []int{3}, double)
	require.NoError(t, err)

	assert.Equal(t, "test", report.Name)
	assert.Len(t, report.Children(), 2)
}
