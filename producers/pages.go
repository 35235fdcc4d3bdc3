package producers

import (
	"errors"

	"github.com/cenkalti/backoff/v4"

	"go.llib.dev/pullstream"
	"go.llib.dev/pullstream/option"
)

// NoMorePages is the sentinel error of the Pages producer.
// The next page function returns it to signal that pagination reached its end.
// NoMorePages may accompany a final batch of values,
// in which case the values are still yielded before the producer exhausts.
const NoMorePages pullstream.Error = "[[ErrNoMorePages]]"

// Pages returns a producer which dynamically retrieves more values
// through the "next" page function when the previously fetched values
// are already used up.
//
// An empty page is interpreted as "no more pages left",
// which enables implementations that never return NoMorePages themselves.
func Pages[V any](next func(offset int) (values []V, _ error), opts ...PagesOption) pullstream.Producer[V] {
	c := option.Use(opts)
	return &pagesProducer[V]{
		NextPage: next,
		Retry:    c.BackOff,
	}
}

// PagesConfig holds the settings of a Pages producer.
type PagesConfig struct {
	// BackOff is the retry policy applied on a failing page fetch.
	// Without it, a failing fetch is not retried.
	BackOff backoff.BackOff
}

type PagesOption option.Option[PagesConfig]

// PagesBackOff sets the retry policy that a Pages producer
// applies when fetching a page fails.
// NoMorePages is never retried.
func PagesBackOff(bo backoff.BackOff) PagesOption {
	return option.Func[PagesConfig](func(c *PagesConfig) { c.BackOff = bo })
}

type pagesProducer[V any] struct {
	// NextPage retrieves the values of the page at the given offset.
	NextPage func(offset int) ([]V, error)
	// Retry is the backoff policy for failing NextPage calls.
	Retry backoff.BackOff

	buffer []V
	index  int
	offset int

	done   bool
	noMore bool
	err    error
}

func (p *pagesProducer[V]) Next() (V, bool) {
	var zero V
	if p.done || p.err != nil {
		return zero, false
	}
	for len(p.buffer) <= p.index {
		if p.noMore {
			return zero, false
		}
		vs, err := p.fetch()
		if err != nil && !errors.Is(err, NoMorePages) {
			p.err = err
			return zero, false
		}
		if err != nil || len(vs) == 0 {
			// no further fetching, but a final batch is still served
			p.noMore = true
		}
		p.buffer, p.index = vs, 0
	}
	v := p.buffer[p.index]
	p.index++
	return v, true
}

func (p *pagesProducer[V]) Err() error { return p.err }

func (p *pagesProducer[V]) Close() error {
	p.done = true
	return nil
}

func (p *pagesProducer[V]) fetch() ([]V, error) {
	var vs []V
	fetch := func() error {
		got, err := p.NextPage(p.offset)
		vs = got
		return err
	}
	var err error
	if p.Retry != nil {
		err = backoff.Retry(func() error {
			err := fetch()
			if err != nil && errors.Is(err, NoMorePages) {
				return backoff.Permanent(err)
			}
			return err
		}, p.Retry)
	} else {
		err = fetch()
	}
	if err != nil {
		return vs, err
	}
	p.offset += len(vs)
	return vs, nil
}
