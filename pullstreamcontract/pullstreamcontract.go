// Package pullstreamcontract provides the behavioural contract
// that pullstream.Producer implementations are expected to honour.
package pullstreamcontract

import (
	"io"
	"testing"

	"go.llib.dev/testcase"

	"go.llib.dev/pullstream"
)

// Contract represents a behavioural specification towards a supplier implementation.
// Expectations of the Stream towards its producers are defined as a Contract,
// so any Producer implementation can be verified against them.
type Contract interface {
	testcase.Suite
	// Test asserts the expected behavioural requirements on a supplier implementation.
	Test(*testing.T)
	// Benchmark helps measuring a supplier implementation.
	Benchmark(*testing.B)
}

// ProducerSubject contains the dependencies of the Producer contract.
type ProducerSubject[V any] struct {
	// Producer is a fresh, untouched producer under test.
	Producer pullstream.Producer[V]
	// Values are the values the producer is expected to yield, in production order.
	// The contract expects finite producers.
	Values []V
}

// Producer is the contract of the pullstream.Producer port.
// The mk function is called for every test case to supply a fresh subject.
func Producer[V any](mk func(tb testing.TB) ProducerSubject[V]) Contract {
	s := testcase.NewSpec(nil)

	subject := testcase.Let(s, func(t *testcase.T) ProducerSubject[V] {
		return mk(t)
	})

	drain := func(p pullstream.Producer[V]) []V {
		var vs []V
		for {
			v, ok := p.Next()
			if !ok {
				break
			}
			vs = append(vs, v)
		}
		return vs
	}

	s.Then("it yields the declared values in production order", func(t *testcase.T) {
		sub := subject.Get(t)

		got := drain(sub.Producer)

		t.Must.Equal(len(sub.Values), len(got))
		for i, v := range sub.Values {
			t.Must.Equal(v, got[i])
		}
	})

	s.Then("exhaustion is sticky", func(t *testcase.T) {
		sub := subject.Get(t)
		drain(sub.Producer)

		t.Random.Repeat(2, 5, func() {
			_, ok := sub.Producer.Next()
			t.Must.False(ok)
		})
	})

	s.Then("a cleanly exhausted producer reports no failure", func(t *testcase.T) {
		sub := subject.Get(t)
		drain(sub.Producer)

		if ep, ok := sub.Producer.(pullstream.ErrProducer); ok {
			t.Must.NoError(ep.Err())
		}
	})

	s.Then("a closeable producer accepts closing after the traversal", func(t *testcase.T) {
		sub := subject.Get(t)
		drain(sub.Producer)

		if closer, ok := sub.Producer.(io.Closer); ok {
			t.Must.NoError(closer.Close())
		}
	})

	s.Then("a stream made from the producer collects the same values", func(t *testcase.T) {
		sub := subject.Get(t)

		got, err := pullstream.Collect(pullstream.From[V](sub.Producer))

		t.Must.NoError(err)
		t.Must.Equal(len(sub.Values), len(got))
		for i, v := range sub.Values {
			t.Must.Equal(v, got[i])
		}
	})

	return s.AsSuite("pullstream.Producer")
}
