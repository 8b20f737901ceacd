package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/cmsadmin/internal/telemetry/logger"
)

// BadgerStorage stores the session in a Badger database.
type BadgerStorage struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger database in dir. An empty dir
// opens an in-memory database.
func OpenBadger(dir string, log logger.Logger) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Session data is tiny; keep the footprint small.
	opts = opts.
		WithNumVersionsToKeep(1).
		WithValueLogFileSize(1 << 20).
		WithMemTableSize(4 << 20).
		WithSyncWrites(true)
	if log == nil {
		log = logger.Default()
	}
	opts.Logger = &badgerLogger{logger: log.With("component", "session-store")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

// Get retrieves a value by key.
func (b *BadgerStorage) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores all entries in one transaction.
func (b *BadgerStorage) Put(_ context.Context, entries map[string][]byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for k, v := range entries {
			if err := txn.Set([]byte(k), v); err != nil {
				return fmt.Errorf("set %s: %w", k, err)
			}
		}
		return nil
	})
}

// Delete removes keys in one transaction.
func (b *BadgerStorage) Delete(_ context.Context, keys ...string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}
		return nil
	})
}

// Close closes the database.
func (b *BadgerStorage) Close() error {
	return b.db.Close()
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Badger is chatty at info level; demote it.
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
