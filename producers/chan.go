package producers

import (
	"go.llib.dev/pullstream"
)

// Chan returns a producer that receives its values from the given channel.
// The producer is exhausted once the channel is closed.
// While the channel is open but empty, pulling blocks.
func Chan[V any](ch <-chan V) pullstream.Producer[V] {
	return pullstream.ProducerFunc[V](func() (V, bool) {
		v, ok := <-ch
		return v, ok
	})
}
