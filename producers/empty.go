package producers

import (
	"go.llib.dev/pullstream"
)

// Empty returns a producer that is exhausted from the start.
// It helps to express the absence of values without passing a nil producer,
// which would be reported as a usage error by the stream.
func Empty[V any]() pullstream.Producer[V] {
	return emptyProducer[V]{}
}

type emptyProducer[V any] struct{}

func (emptyProducer[V]) Next() (V, bool) {
	var zero V
	return zero, false
}
