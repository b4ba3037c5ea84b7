// Package kv defines the durable key-value contract the ledger is built on.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is returned by Get when the key is absent
var ErrNotFound = errors.New("kv: key not found")

// Entry is a key with its stored value
type Entry struct {
	Key   string
	Value []byte
}

// Tx is a view of the store inside one atomic unit.
type Tx interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Scan returns all entries whose key starts with prefix, ordered by key.
	Scan(ctx context.Context, prefix string) ([]Entry, error)
}

// Store runs functions against the data. Update applies all writes made by fn
// or none of them, and serializes against every other Update touching the same keys.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// NextSequence increments and returns the named counter. Must be called inside Update.
func NextSequence(ctx context.Context, tx Tx, name string) (int64, error) {
	key := "seq/" + name
	var current int64

	raw, err := tx.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return 0, err
	default:
		current, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("kv: corrupt sequence %s: %w", name, err)
		}
	}

	next := current + 1
	if err := tx.Put(ctx, key, []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, err
	}
	return next, nil
}
