package producers

import (
	"io"

	"go.llib.dev/pullstream"
)

// SQLRows returns a producer that yields mapped values from a sql.Rows
// like result set. It lets you stream query results without loading
// them into memory at once, and makes testing possible without an
// actual database connection.
func SQLRows[V any](rows sqlRows, mapper SQLRowMapper[V]) pullstream.Producer[V] {
	return &sqlRowsProducer[V]{Rows: rows, Mapper: mapper}
}

type sqlRowsProducer[V any] struct {
	Rows   sqlRows
	Mapper SQLRowMapper[V]

	err error
}

type sqlRows interface {
	io.Closer
	Next() bool
	Err() error
	Scan(dest ...interface{}) error
}

func (p *sqlRowsProducer[V]) Next() (V, bool) {
	var zero V
	if p.err != nil {
		return zero, false
	}
	if !p.Rows.Next() {
		return zero, false
	}
	v, err := p.Mapper.Map(p.Rows)
	if err != nil {
		p.err = err
		return zero, false
	}
	return v, true
}

func (p *sqlRowsProducer[V]) Err() error {
	if p.err != nil {
		return p.err
	}
	return p.Rows.Err()
}

func (p *sqlRowsProducer[V]) Close() error {
	return p.Rows.Close()
}

// sql rows producer dependencies

type SQLRowScanner interface {
	Scan(...interface{}) error
}

type SQLRowMapper[V any] interface {
	Map(s SQLRowScanner) (V, error)
}

type SQLRowMapperFunc[V any] func(SQLRowScanner) (V, error)

func (fn SQLRowMapperFunc[V]) Map(s SQLRowScanner) (V, error) { return fn(s) }
