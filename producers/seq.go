package producers

import (
	"iter"

	"go.llib.dev/pullstream"
)

// Seq returns a producer that pulls its values from an iter.Seq sequence.
// Closing the producer stops the sequence.
func Seq[V any](src iter.Seq[V]) pullstream.Producer[V] {
	next, stop := iter.Pull(src)
	return &seqProducer[V]{next: next, stop: stop}
}

type seqProducer[V any] struct {
	next func() (V, bool)
	stop func()
}

func (p *seqProducer[V]) Next() (V, bool) { return p.next() }

func (p *seqProducer[V]) Close() error {
	p.stop()
	return nil
}

// ErrSeq returns a producer that pulls its values from an error aware
// iter.Seq2 sequence, where the sequence reports its failure
// as the second parameter of its last element.
// Closing the producer stops the sequence.
func ErrSeq[V any](src iter.Seq2[V, error]) pullstream.Producer[V] {
	next, stop := iter.Pull2(src)
	return &errSeqProducer[V]{next: next, stop: stop}
}

type errSeqProducer[V any] struct {
	next func() (V, error, bool)
	stop func()
	err  error
}

func (p *errSeqProducer[V]) Next() (V, bool) {
	var zero V
	if p.err != nil {
		return zero, false
	}
	v, err, ok := p.next()
	if !ok {
		return zero, false
	}
	if err != nil {
		p.err = err
		return zero, false
	}
	return v, true
}

func (p *errSeqProducer[V]) Err() error { return p.err }

func (p *errSeqProducer[V]) Close() error {
	p.stop()
	return nil
}
