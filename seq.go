package pullstream

import (
	"iter"

	"go.llib.dev/pullstream/internal/errorkit"
)

// Results returns the values of the stream as an error aware iter.Seq2 sequence,
// where the second parameter is the error that ended the traversal, if any.
//
// Ranging over Results begins the traversal of the stream,
// so a single range statement must consume it.
// Results does not close the stream, that duty stays with the caller.
func (s *Stream[V]) Results() iter.Seq2[V, error] {
	return func(yield func(V, error) bool) {
		c := s.Begin()
		for ; !c.AtEnd(); c.Next() {
			if !yield(c.Value(), nil) {
				return
			}
		}
		if err := c.Err(); err != nil {
			var zero V
			yield(zero, err)
		}
	}
}

// Collect drains the stream into a slice, then closes the stream.
func Collect[V any](s *Stream[V]) (_ []V, rErr error) {
	if s == nil {
		return nil, nil
	}
	defer errorkit.Finish(&rErr, s.Close)
	var vs []V
	c := s.Begin()
	for ; !c.AtEnd(); c.Next() {
		vs = append(vs, c.Value())
	}
	return vs, c.Err()
}
