package producers

import (
	"bufio"
	"io"

	"go.llib.dev/pullstream"
)

// Scanner returns a producer that yields the tokens of a bufio.Scanner.
// The closer is closed together with the owning stream, it may be nil.
func Scanner[V string | []byte](s *bufio.Scanner, closer io.Closer) pullstream.Producer[V] {
	return &scannerProducer[V]{
		Scanner: s,
		Closer:  closer,
	}
}

type scannerProducer[V string | []byte] struct {
	*bufio.Scanner
	Closer io.Closer
}

func (p *scannerProducer[V]) Next() (V, bool) {
	var zero V
	if p.Scanner.Err() != nil {
		return zero, false
	}
	if !p.Scanner.Scan() {
		return zero, false
	}
	var iface interface{} = zero
	switch iface.(type) {
	case string:
		return V(p.Scanner.Text()), true
	case []byte:
		return V(p.Scanner.Bytes()), true
	}
	return zero, false
}

func (p *scannerProducer[V]) Err() error {
	return p.Scanner.Err()
}

func (p *scannerProducer[V]) Close() error {
	if p.Closer == nil {
		return nil
	}
	return p.Closer.Close()
}
