// Package cache implements the response cache for fallback answers, so a
// repeated question is answered from disk instead of paying for a second
// generation. Entries survive restarts.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Cached answers expire so stale generations do not live forever.
const entryTTL = 7 * 24 * time.Hour

// Badger is a disk-backed response cache.
type Badger struct {
	db     *badger.DB
	logger *zap.Logger
}

// NewBadger opens (or creates) a cache at dir.
func NewBadger(dir string, logger *zap.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open response cache: %w", err)
	}
	return &Badger{db: db, logger: logger}, nil
}

// Get implements repositories.ResponseCache.
func (b *Badger) Get(ctx context.Context, key string) (string, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return string(value), true, nil
}

// Put implements repositories.ResponseCache.
func (b *Badger) Put(ctx context.Context, key, response string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(response)).WithTTL(entryTTL)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Close implements repositories.ResponseCache.
func (b *Badger) Close() error {
	return b.db.Close()
}
