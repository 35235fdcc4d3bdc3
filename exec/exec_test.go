package exec_test

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"go.llib.dev/pullstream"
	"go.llib.dev/pullstream/exec"
	"go.llib.dev/pullstream/pullstreamcontract"
	"go.llib.dev/testcase"
)

func double(_ context.Context, v int) (int, error) { return v * 2, nil }

func naturals() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

func rangeN(n int) []int {
	vs := make([]int, 0, n)
	for i := 0; i < n; i++ {
		vs = append(vs, i)
	}
	return vs
}

func TestPool(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test("results arrive in submission order", func(t *testcase.T) {
		tasks := rangeN(100)
		pool := exec.New(context.Background(), slices.Values(tasks),
			func(ctx context.Context, v int) (int, error) {
				time.Sleep(time.Duration(v%4) * time.Millisecond)
				return v * 2, nil
			},
			exec.Workers(8))

		vs, err := pullstream.Collect(pullstream.From[int](pool))

		t.Must.NoError(err)
		t.Must.Equal(len(tasks), len(vs))
		for i, v := range vs {
			t.Must.Equal(i*2, v)
		}
	})

	s.Test("a single worker pool keeps the order trivially", func(t *testcase.T) {
		pool := exec.New(context.Background(), slices.Values([]int{1, 2, 3}), double)

		vs, err := pullstream.Collect(pullstream.From[int](pool))

		t.Must.NoError(err)
		t.Must.Equal([]int{2, 4, 6}, vs)
	})

	s.Test("an empty task sequence finishes the pool immediately", func(t *testcase.T) {
		pool := exec.New(context.Background(), slices.Values([]int{}), double)

		vs, err := pullstream.Collect(pullstream.From[int](pool))

		t.Must.NoError(err)
		t.Must.Empty(vs)
	})

	s.Test("the progress counters settle when the pool is done", func(t *testcase.T) {
		pool := exec.New(context.Background(), slices.Values(rangeN(42)), double,
			exec.Workers(4))

		_, err := pullstream.Collect(pullstream.From[int](pool))

		t.Must.NoError(err)
		t.Must.Equal(exec.Stats{Submitted: 42, Delivered: 42}, pool.Stats())
	})

	s.Test("the first task failure stops the pool and is reported", func(t *testcase.T) {
		expectedErr := t.Random.Error()
		pool := exec.New(context.Background(), slices.Values(rangeN(20)),
			func(ctx context.Context, v int) (int, error) {
				if v == 10 {
					return 0, expectedErr
				}
				return v * 2, nil
			})

		vs, err := pullstream.Collect(pullstream.From[int](pool))

		t.Must.ErrorIs(expectedErr, err)
		t.Must.True(len(vs) <= 10)
		for i, v := range vs {
			t.Must.Equal(i*2, v)
		}
	})

	s.Test("closing early releases a pool over an endless task sequence", func(t *testcase.T) {
		pool := exec.New(context.Background(), naturals(), double,
			exec.Workers(2))

		for i := 0; i < 3; i++ {
			v, ok := pool.Next()
			t.Must.True(ok)
			t.Must.Equal(i*2, v)
		}

		t.Must.NoError(pool.Close())

		for { // the results delivered before closing stay readable
			if _, ok := pool.Next(); !ok {
				break
			}
		}
		t.Must.NoError(pool.Err())
	})

	s.Test("closing multiple times is safe", func(t *testcase.T) {
		pool := exec.New(context.Background(), slices.Values([]int{1, 2, 3}), double)

		t.Must.NoError(pool.Close())
		t.Must.NoError(pool.Close())
	})

	s.Test("a cancelled context prevents any task from running", func(t *testcase.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var runs atomic.Int64
		pool := exec.New(ctx, slices.Values(rangeN(10)),
			func(ctx context.Context, v int) (int, error) {
				runs.Add(1)
				return v, nil
			})

		vs, err := pullstream.Collect(pullstream.From[int](pool))

		t.Must.NoError(err)
		t.Must.Empty(vs)
		t.Must.Equal(int64(0), runs.Load())
	})

	s.Test("a task failure reported by the run function respecting the context", func(t *testcase.T) {
		expectedErr := fmt.Errorf("task says no")
		pool := exec.New(context.Background(), slices.Values([]int{1}),
			func(ctx context.Context, v int) (int, error) {
				return 0, expectedErr
			})

		_, err := pullstream.Collect(pullstream.From[int](pool))

		t.Must.ErrorIs(expectedErr, err)
	})

	s.Test("the configured logger receives the progress events", func(t *testcase.T) {
		var buf bytes.Buffer
		pool := exec.New(context.Background(), slices.Values([]int{1, 2, 3}), double,
			exec.Workers(2),
			exec.Logger(zerolog.New(&buf)))

		_, err := pullstream.Collect(pullstream.From[int](pool))

		t.Must.NoError(err)
		t.Must.Contain(buf.String(), "pull pool started")
		t.Must.Contain(buf.String(), "pull pool finished")
		t.Must.Contain(buf.String(), `"submitted":3`)
		t.Must.Contain(buf.String(), `"delivered":3`)
	})

	s.Test("the buffer lets the workers run ahead of the consumer", func(t *testcase.T) {
		var started atomic.Int64
		pool := exec.New(context.Background(), slices.Values(rangeN(10)),
			func(ctx context.Context, v int) (int, error) {
				started.Add(1)
				return v, nil
			},
			exec.Workers(2), exec.Buffer(8))
		defer pool.Close()

		_, ok := pool.Next()
		t.Must.True(ok)

		t.Eventually(func(t *testcase.T) {
			t.Must.True(1 < started.Load())
		})
	})
}

func TestPool_contract(t *testing.T) {
	testcase.RunSuite(t, pullstreamcontract.Producer[int](func(tb testing.TB) pullstreamcontract.ProducerSubject[int] {
		vs := rangeN(7)
		pool := exec.New(context.Background(), slices.Values(vs),
			func(ctx context.Context, v int) (int, error) { return v, nil },
			exec.Workers(3))
		return pullstreamcontract.ProducerSubject[int]{
			Producer: pool,
			Values:   vs,
		}
	}))
}
