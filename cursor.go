package pullstream

// Cursor is the traversal handle of a Stream.
//
// A cursor follows the cursor protocol of database/sql.Rows:
// Next advances, Value reads, and Err must be checked once AtEnd reports true.
// The zero Cursor is valid and behaves as an already ended traversal.
type Cursor[V any] struct {
	stream *Stream[V]
	active bool
	err    error
}

// Next advances the cursor by pulling one value from the stream,
// and reports whether the cursor still points at a readable value.
// Once the cursor reached its end, Next keeps returning false without
// further pulls.
func (c *Cursor[V]) Next() bool {
	if c.stream == nil {
		c.err = ErrNoProducer
		return false
	}
	if !c.active {
		return false
	}
	ok, err := c.stream.pull()
	c.active = ok
	c.err = err
	return ok
}

// Value reads the most recently pulled value of the stream.
// Reading never pulls, so calling Value repeatedly is cheap.
// After the traversal ended, Value keeps returning the last pulled value.
func (c *Cursor[V]) Value() V {
	if c.stream == nil {
		var zero V
		return zero
	}
	return c.stream.cache
}

// AtEnd reports whether the traversal is over.
func (c *Cursor[V]) AtEnd() bool { return !c.active }

// Err returns the error that ended the traversal, if any.
// A fully consumed stream ends with a nil Err,
// exhaustion on its own is not an error.
func (c *Cursor[V]) Err() error { return c.err }
