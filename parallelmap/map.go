package parallelmap

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/errgroup"
)

// Map applies a function over a slice of inputs, either one element at a
// time (Apply) or over contiguous blocks (ProcessBlocks, used by callers
// that amortize per-call overhead — e.g. matching a batch of rules against
// one register instead of one rule at a time).
type Map[T, R any] interface {
	Apply(ctx context.Context, inputs []T, f func(T) (R, error)) ([]R, error)
	ProcessBlocks(ctx context.Context, inputs []T, blockSize int, f func([]T) ([]R, error)) ([]R, error)
}

func blocks[T any](inputs []T, blockSize int) [][]T {
	if blockSize <= 0 {
		panic(ErrInvalidBlockSize)
	}
	var out [][]T
	for i := 0; i < len(inputs); i += blockSize {
		end := i + blockSize
		if end > len(inputs) {
			end = len(inputs)
		}
		out = append(out, inputs[i:end])
	}
	return out
}

// Sequential runs every call on the calling goroutine — the reference
// implementation every concurrent one must agree with, and the correct
// choice when the caller already holds a lock or the batch is too small to
// justify dispatch overhead.
type Sequential[T, R any] struct{}

func (Sequential[T, R]) Apply(ctx context.Context, inputs []T, f func(T) (R, error)) ([]R, error) {
	out := make([]R, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := f(in)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (Sequential[T, R]) ProcessBlocks(ctx context.Context, inputs []T, blockSize int, f func([]T) ([]R, error)) ([]R, error) {
	var out []R
	for _, block := range blocks(inputs, blockSize) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rs, err := f(block)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// WorkStealing dispatches every element to an unbounded work-stealing pool
// (sourcegraph/conc/pool): good throughput when individual tasks vary
// widely in cost and no fixed worker budget is needed.
type WorkStealing[T, R any] struct{}

func (WorkStealing[T, R]) Apply(ctx context.Context, inputs []T, f func(T) (R, error)) ([]R, error) {
	out := make([]R, len(inputs))
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	for i, in := range inputs {
		i, in := i, in
		p.Go(func(ctx context.Context) error {
				r, err := f(in)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (WorkStealing[T, R]) ProcessBlocks(ctx context.Context, inputs []T, blockSize int, f func([]T) ([]R, error)) ([]R, error) {
	bs := blocks(inputs, blockSize)
	results := make([][]R, len(bs))
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	for i, block := range bs {
		i, block := i, block
		p.Go(func(ctx context.Context) error {
				rs, err := f(block)
				if err != nil {
					return err
				}
				results[i] = rs
				return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	var out []R
	for _, rs := range results {
		out = append(out, rs...)
	}
	return out, nil
}

// FixedThread dispatches over an errgroup bounded to N concurrent workers —
// the right choice when tasks are uniform and the caller wants a
// predictable resource ceiling (e.g. one worker per CPU).
type FixedThread[T, R any] struct {
	N int
}

func (ft FixedThread[T, R]) Apply(ctx context.Context, inputs []T, f func(T) (R, error)) ([]R, error) {
	out := make([]R, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ft.N)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
				r, err := f(in)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (ft FixedThread[T, R]) ProcessBlocks(ctx context.Context, inputs []T, blockSize int, f func([]T) ([]R, error)) ([]R, error) {
	bs := blocks(inputs, blockSize)
	results := make([][]R, len(bs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ft.N)
	for i, block := range bs {
		i, block := i, block
		g.Go(func() error {
				rs, err := f(block)
				if err != nil {
					return err
				}
				results[i] = rs
				return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []R
	for _, rs := range results {
		out = append(out, rs...)
	}
	return out, nil
}
