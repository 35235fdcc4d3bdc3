// Package pullstream turns pull based producers into lazy, single pass streams.
//
// A Stream takes exclusive ownership of a Producer and exposes its values
// one at a time through a Cursor. Pulling is lazy: nothing is requested from
// the producer until the traversal begins, and each traversal step requests
// exactly one further value. The stream caches the most recently produced
// value, so reading the current value never triggers production.
//
// The result of a pull is remembered, which makes reading cheap and repeatable,
// but it also means a stream can be traversed only once.
package pullstream

import (
	"io"
)

// Error is an implementation for the error interface that allows you
// to declare exported globals with the `const` keyword.
//
//	const ErrSomething pullstream.Error = "something is an error"
type Error string

func (err Error) Error() string { return string(err) }

// ErrNoProducer is the error returned when a stream is asked to pull
// but has no producer to pull from.
// It reports incorrect API usage,
// such as advancing a zero value Stream or a stream that was already closed.
const ErrNoProducer Error = "pullstream: stream has no producer to pull from"

// Producer is the supplier side of a Stream.
//
// Next produces the next value of the sequence.
// The returned bool reports whether production succeeded,
// and a false value marks the exhaustion of the producer.
// After Next reported exhaustion once, further calls must keep reporting it.
//
// A Producer may optionally implement ErrProducer to report failures,
// and io.Closer to release resources when the owning stream is closed.
type Producer[V any] interface {
	Next() (V, bool)
}

// ErrProducer is an optional Producer extension for producers that can fail.
// When Next reports exhaustion, Err tells whether the sequence ended
// because its values were taken in full, or because producing failed.
type ErrProducer interface {
	Err() error
}

// ProducerFunc is an adapter to allow the use of ordinary functions as a Producer.
type ProducerFunc[V any] func() (V, bool)

func (fn ProducerFunc[V]) Next() (V, bool) { return fn() }

// Stream is a lazy, single pass view over the values of a Producer.
//
// The stream takes exclusive ownership of its producer;
// the producer must not be used directly once it was passed to From.
// Stream values must not be copied, share them by pointer.
// A Stream is not safe for concurrent use.
type Stream[V any] struct {
	producer Producer[V]
	cache    V
}

// From returns a Stream that owns the given producer.
//
// The zero Stream and From(nil) behave the same:
// they are empty and pulling from them yields ErrNoProducer.
func From[V any](p Producer[V]) *Stream[V] {
	return &Stream[V]{producer: p}
}

// Begin starts the traversal of the stream and returns its cursor.
//
// Begin eagerly pulls the first value, so after it returns,
// the cursor either holds a readable value or is already at its end.
// A stream is meant to be traversed by a single cursor:
//
//	for c := stream.Begin(); !c.AtEnd(); c.Next() {
//		_ = c.Value()
//	}
//	if err := c.Err(); err != nil { ... }
func (s *Stream[V]) Begin() *Cursor[V] {
	c := &Cursor[V]{stream: s, active: true}
	c.Next()
	return c
}

// Close releases the producer of the stream.
// If the producer implements io.Closer, its Close error is returned.
// After Close, pulling from the stream yields ErrNoProducer.
// Calling Close multiple times is safe.
func (s *Stream[V]) Close() error {
	p := s.producer
	s.producer = nil
	if closer, ok := p.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// pull requests a single value from the producer and caches it.
// The returned bool reports whether a new value became readable.
func (s *Stream[V]) pull() (bool, error) {
	if s.producer == nil {
		return false, ErrNoProducer
	}
	v, ok := s.producer.Next()
	if !ok {
		// the cache is left untouched, so the last value stays readable
		if ep, ok := s.producer.(ErrProducer); ok {
			if err := ep.Err(); err != nil {
				return false, err
			}
		}
		return false, nil
	}
	s.cache = v
	return true, nil
}
