package producers

import (
	"go.llib.dev/pullstream"
)

// Slice returns a producer that yields the values of the given slice in order.
func Slice[V any](vs []V) pullstream.Producer[V] {
	return &sliceProducer[V]{Values: vs}
}

type sliceProducer[V any] struct {
	Values []V

	index int
}

func (p *sliceProducer[V]) Next() (V, bool) {
	if len(p.Values) <= p.index {
		var zero V
		return zero, false
	}
	v := p.Values[p.index]
	p.index++
	return v, true
}
