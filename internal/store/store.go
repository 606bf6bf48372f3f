// Package store persists conversations and messages in an embedded
// Pebble database. Records are JSON documents; ordering comes from
// sortable key encodings rather than secondary indexes.
package store

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/relayhq/chat-platform/internal/apperr"
	"github.com/relayhq/chat-platform/pkg/logger"
)

// DB wraps the shared Pebble handle used by both stores.
type DB struct {
	pebble *pebble.DB
	logger *logger.Logger
}

// Open opens (or creates) the database at path.
func Open(path string, log *logger.Logger) (*DB, error) {
	p, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db at %s: %w", path, err)
	}
	log.Info("store opened", "path", path)
	return &DB{pebble: p, logger: log}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	if d.pebble == nil {
		return nil
	}
	err := d.pebble.Close()
	d.pebble = nil
	return err
}

// Ready reports whether the store is open.
func (d *DB) Ready() bool {
	return d.pebble != nil
}

// get returns the value for key, or (nil, false) when absent.
func (d *DB) get(key []byte) ([]byte, bool, error) {
	val, closer, err := d.pebble.Get(key)
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	out := make([]byte, len(val))
	copy(out, val)
	if err := closer.Close(); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// set writes key to value durably.
func (d *DB) set(key, value []byte) error {
	return d.pebble.Set(key, value, pebble.Sync)
}

// delete removes key durably.
func (d *DB) delete(key []byte) error {
	return d.pebble.Delete(key, pebble.Sync)
}

// scanPrefix visits every key with the given prefix in key order. The
// callback receives stable copies of key and value; returning false
// stops the scan.
func (d *DB) scanPrefix(prefix []byte, fn func(key, value []byte) bool) error {
	iter, err := d.pebble.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		k := append([]byte(nil), iter.Key()...)
		v := append([]byte(nil), iter.Value()...)
		if !fn(k, v) {
			break
		}
	}
	return iter.Error()
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}

// prefixUpperBound returns the smallest key greater than every key
// with the given prefix.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
