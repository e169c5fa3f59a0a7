package parallelmap

import (
	"context"
	"sync"
	"time"
)

// CancellationToken is a one-shot, idempotent cancellation flag shared
// across a saturation run — checked by Cancelable between dispatching
// tasks, and by saturate's own iteration loop to stop early on a timeout or
// an explicit caller abort.
type CancellationToken interface {
	IsCanceled() bool
	Cancel()
}

type cancellationToken struct {
	canceled bool
	mu sync.Mutex
	once sync.Once
}

// NewCancellationToken returns a fresh, uncanceled token.
func NewCancellationToken() CancellationToken {
	return &cancellationToken{}
}

func (t *cancellationToken) IsCanceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

func (t *cancellationToken) Cancel() {
	t.once.Do(func() {
			t.mu.Lock()
			t.canceled = true
			t.mu.Unlock()
	})
}

// cancelable wraps a Map, checking token before dispatching work and again
// before each item or block, surfacing ErrCanceled once canceled.
type cancelable[T, R any] struct {
	inner Map[T, R]
	token CancellationToken
}

// Cancelable wraps inner so every Apply/ProcessBlocks call checks token
// before running inner and again before each item (Apply) or block
// (ProcessBlocks), returning ErrCanceled once it has been canceled.
func Cancelable[T, R any](inner Map[T, R], token CancellationToken) Map[T, R] {
	return cancelable[T, R]{inner: inner, token: token}
}

func (c cancelable[T, R]) Apply(ctx context.Context, inputs []T, f func(T) (R, error)) ([]R, error) {
	if c.token.IsCanceled() {
		return nil, ErrCanceled
	}
	return c.inner.Apply(ctx, inputs, func(x T) (R, error) {
		if c.token.IsCanceled() {
			var zero R
			return zero, ErrCanceled
		}
		return f(x)
	})
}

func (c cancelable[T, R]) ProcessBlocks(ctx context.Context, inputs []T, blockSize int, f func([]T) ([]R, error)) ([]R, error) {
	if c.token.IsCanceled() {
		return nil, ErrCanceled
	}
	return c.inner.ProcessBlocks(ctx, inputs, blockSize, func(block []T) ([]R, error) {
		if c.token.IsCanceled() {
			return nil, ErrCanceled
		}
		return f(block)
	})
}

// TimingReport is a human-inspectable nested duration tree: one node per
// Timed-wrapped Map, with one child appended per Apply/ProcessBlocks call.
type TimingReport struct {
	Name string
	Duration time.Duration

	mu sync.Mutex
	children []*TimingReport
}

// Children returns a snapshot of the report's recorded child calls.
func (r *TimingReport) Children() []*TimingReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*TimingReport(nil), r.children...)
}

func (r *TimingReport) record(child *TimingReport) {
	r.mu.Lock()
	r.children = append(r.children, child)
	r.mu.Unlock()
}

type timed[T, R any] struct {
	inner Map[T, R]
	report *TimingReport
}

// Timed wraps inner, returning a Map that records one TimingReport child
// per call under name, and the root report itself.
func Timed[T, R any](inner Map[T, R], name string) (Map[T, R], *TimingReport) {
	report := &TimingReport{Name: name}
	return timed[T, R]{inner: inner, report: report}, report
}

func (t timed[T, R]) Apply(ctx context.Context, inputs []T, f func(T) (R, error)) ([]R, error) {
	start := time.Now()
	out, err := t.inner.Apply(ctx, inputs, f)
	t.report.record(&TimingReport{Name: "Apply", Duration: time.Since(start)})
	return out, err
}

func (t timed[T, R]) ProcessBlocks(ctx context.Context, inputs []T, blockSize int, f func([]T) ([]R, error)) ([]R, error) {
	start := time.Now()
	out, err := t.inner.ProcessBlocks(ctx, inputs, blockSize, f)
	t.report.record(&TimingReport{Name: "ProcessBlocks", Duration: time.Since(start)})
	return out, err
}
