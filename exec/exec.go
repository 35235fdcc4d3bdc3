// Package exec runs tasks concurrently while preserving their submission
// order, and exposes the results as a pull based producer that integrates
// with pullstream.
package exec

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"go.llib.dev/pullstream/option"
)

// Config holds the settings of a Pool.
type Config struct {
	// Workers is the number of goroutines running tasks.
	Workers int
	// Buffer is the capacity of the result buffer.
	// A larger buffer lets the workers run further ahead of the consumer.
	Buffer int
	// Logger receives debug level progress events of the pool.
	// The zero Logger is silent.
	Logger zerolog.Logger
}

func (c Config) getWorkers() int {
	const defaultWorkers = 1
	if c.Workers <= 0 {
		return defaultWorkers
	}
	return c.Workers
}

func (c Config) getBuffer() int {
	if c.Buffer <= 0 {
		return c.getWorkers()
	}
	return c.Buffer
}

type Option option.Option[Config]

// Workers sets how many goroutines run tasks concurrently.
func Workers(n int) Option {
	return option.Func[Config](func(c *Config) { c.Workers = n })
}

// Buffer sets the capacity of the result buffer.
// Without it, the buffer capacity matches the worker count.
func Buffer(n int) Option {
	return option.Func[Config](func(c *Config) { c.Buffer = n })
}

// Logger sets the logger that receives the progress events of the pool.
func Logger(l zerolog.Logger) Option {
	return option.Func[Config](func(c *Config) { c.Logger = l })
}

// Stats describe the progress of a Pool.
type Stats struct {
	// Submitted is the number of tasks handed over to the workers.
	Submitted uint64
	// Delivered is the number of results made available in submission order.
	Delivered uint64
}

func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("submitted", s.Submitted).Uint64("delivered", s.Delivered)
}

// Pool runs tasks on a set of worker goroutines and yields their results
// in submission order through the pullstream.Producer interface.
//
// The first task failure cancels the pool: pending and not yet submitted
// tasks are abandoned, and the failure is reported through Err.
// Results that were already delivered stay readable.
type Pool[Out any] struct {
	out      chan Out
	stop     context.CancelFunc
	finished chan struct{}
	err      error

	submitted atomic.Uint64
	delivered atomic.Uint64
}

type task[In any] struct {
	seq   uint64
	value In
}

type completion[Out any] struct {
	seq   uint64
	value Out
}

// New starts a Pool that runs the given task values through the run function.
// The tasks sequence is consumed lazily, in step with the workers.
// The returned pool must be closed once the results are no longer needed.
func New[In, Out any](
	ctx context.Context,
	tasks iter.Seq[In],
	run func(context.Context, In) (Out, error),
	opts ...Option,
) *Pool[Out] {
	c := option.Use(opts)

	ctx, stop := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	var (
		workers = c.getWorkers()
		in      = make(chan task[In])
		done    = make(chan completion[Out])
	)

	p := &Pool[Out]{
		out:      make(chan Out, c.getBuffer()),
		stop:     stop,
		finished: make(chan struct{}),
	}

	log := c.Logger.With().Str("pool", uuid.NewString()).Logger()
	log.Debug().
		Int("workers", workers).
		Int("buffer", c.getBuffer()).
		Msg("pull pool started")

	g.Go(func() error { // dispatcher
		defer close(in)
		var seq uint64
		for v := range tasks {
			select {
			case in <- task[In]{seq: seq, value: v}:
				seq++
				p.submitted.Add(1)
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		g.Go(func() error { // worker
			defer wg.Done()
			for t := range in {
				if gctx.Err() != nil {
					return nil
				}
				v, err := run(gctx, t.value)
				if err != nil {
					return err
				}
				select {
				case done <- completion[Out]{seq: t.seq, value: v}:
				case <-gctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	g.Go(func() error { // collector, restores submission order
		pending := make(map[uint64]Out)
		var next uint64
		for c := range done {
			pending[c.seq] = c.value
			for {
				v, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				select {
				case p.out <- v:
					next++
					p.delivered.Add(1)
				case <-gctx.Done():
					return nil
				}
			}
		}
		return nil
	})

	go func() {
		err := g.Wait()
		stop()
		if err != nil {
			p.err = err
			log.Debug().Err(err).Msg("pull pool failed")
		}
		log.Debug().Object("stats", p.Stats()).Msg("pull pool finished")
		// closing order matters: once out is closed,
		// a finished pool must already present its error
		close(p.finished)
		close(p.out)
	}()

	return p
}

// Next yields the next result in submission order.
// It blocks until a result is available or the pool is finished.
func (p *Pool[Out]) Next() (Out, bool) {
	v, ok := <-p.out
	return v, ok
}

// Err reports the task failure that stopped the pool, if any.
// Its value is settled once Next reported exhaustion.
func (p *Pool[Out]) Err() error {
	select {
	case <-p.finished:
		return p.err
	default:
		return nil
	}
}

// Close cancels the pool and waits until its goroutines are released.
// Results that were delivered before closing stay readable.
// Calling Close multiple times is safe.
func (p *Pool[Out]) Close() error {
	p.stop()
	<-p.finished
	return nil
}

// Stats returns a snapshot of the pool's progress counters.
func (p *Pool[Out]) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Delivered: p.delivered.Load(),
	}
}
