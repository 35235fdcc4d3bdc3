package producers

import (
	"bytes"
	"fmt"

	"github.com/boltdb/bolt"

	"go.llib.dev/pullstream"
)

// KV is a key value pair yielded by the Bolt producer.
type KV struct {
	Key   []byte
	Value []byte
}

// Bolt returns a producer that yields the key value pairs of a bolt bucket
// in byte order of the keys.
//
// The producer holds a read transaction open while the traversal is ongoing.
// The transaction starts lazily on the first pull and is released on
// exhaustion or when the owning stream is closed.
// The yielded slices are copies, they stay valid after the transaction ended.
func Bolt(db *bolt.DB, bucket []byte) pullstream.Producer[KV] {
	return &boltProducer{DB: db, Bucket: bucket}
}

type boltProducer struct {
	DB     *bolt.DB
	Bucket []byte

	tx     *bolt.Tx
	cursor *bolt.Cursor

	done bool
	err  error
}

func (p *boltProducer) Next() (KV, bool) {
	var zero KV
	if p.done || p.err != nil {
		return zero, false
	}
	var k, v []byte
	if p.cursor == nil {
		tx, err := p.DB.Begin(false)
		if err != nil {
			p.err = err
			return zero, false
		}
		b := tx.Bucket(p.Bucket)
		if b == nil {
			_ = tx.Rollback()
			p.err = fmt.Errorf("bolt: bucket %q is not found", p.Bucket)
			return zero, false
		}
		p.tx = tx
		p.cursor = b.Cursor()
		k, v = p.cursor.First()
	} else {
		k, v = p.cursor.Next()
	}
	if k == nil {
		p.done = true
		p.err = p.release()
		return zero, false
	}
	// the slices of a bolt cursor are only valid within the transaction
	return KV{
		Key:   bytes.Clone(k),
		Value: bytes.Clone(v),
	}, true
}

func (p *boltProducer) Err() error { return p.err }

func (p *boltProducer) Close() error {
	p.done = true
	return p.release()
}

func (p *boltProducer) release() error {
	tx := p.tx
	p.tx, p.cursor = nil, nil
	if tx == nil {
		return nil
	}
	return tx.Rollback()
}
