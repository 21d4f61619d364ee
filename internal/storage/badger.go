package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aleksaelezovic/sparqlee/pkg/store"
	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStorage implements store.Storage on BadgerDB. Each table is a one
// byte key prefix.
type BadgerStorage struct {
	db *badger.DB
}

// Options configure OpenBadger.
type Options struct {
	// InMemory keeps everything in memory; Path is ignored.
	InMemory bool
	// Logger receives badger's own logs. Nil silences them.
	Logger *slog.Logger
}

// NewBadgerStorage opens or creates a database in path.
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	return OpenBadger(path, Options{})
}

// OpenBadger opens a database with opts.
func OpenBadger(path string, opts Options) (*BadgerStorage, error) {
	bopts := badger.DefaultOptions(path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil
	if opts.Logger != nil {
		bopts.Logger = &badgerLogger{logger: opts.Logger.With("component", "badger")}
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

func (s *BadgerStorage) Begin(writable bool) (store.Transaction, error) {
	return &BadgerTransaction{txn: s.db.NewTransaction(writable), writable: writable}, nil
}

func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

// Sync flushes writes to disk. It is a no-op for in-memory databases.
func (s *BadgerStorage) Sync() error {
	if s.db.Opts().InMemory {
		return nil
	}
	return s.db.Sync()
}

// BadgerTransaction implements store.Transaction.
type BadgerTransaction struct {
	txn      *badger.Txn
	writable bool
}

func (t *BadgerTransaction) Get(table store.Table, key []byte) ([]byte, error) {
	item, err := t.txn.Get(store.PrefixKey(table, key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t *BadgerTransaction) Set(table store.Table, key, value []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	return t.txn.Set(store.PrefixKey(table, key), value)
}

func (t *BadgerTransaction) Delete(table store.Table, key []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	return t.txn.Delete(store.PrefixKey(table, key))
}

// Scan iterates the keys of table starting with prefix. Index entries carry
// no value, so values are not prefetched.
func (t *BadgerTransaction) Scan(table store.Table, prefix []byte) (store.Iterator, error) {
	scanPrefix := store.PrefixKey(table, prefix)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = scanPrefix
	return &BadgerIterator{it: t.txn.NewIterator(opts), seekKey: scanPrefix}, nil
}

func (t *BadgerTransaction) Commit() error {
	return t.txn.Commit()
}

// Rollback discards the transaction. It is safe to call after Commit.
func (t *BadgerTransaction) Rollback() error {
	t.txn.Discard()
	return nil
}

// BadgerIterator implements store.Iterator.
type BadgerIterator struct {
	it       *badger.Iterator
	seekKey  []byte
	started  bool
	hasValue bool
}

func (i *BadgerIterator) Next() bool {
	if !i.started {
		i.it.Seek(i.seekKey)
		i.started = true
	} else {
		i.it.Next()
	}
	i.hasValue = i.it.Valid()
	return i.hasValue
}

// Key returns the current key without its table byte.
func (i *BadgerIterator) Key() []byte {
	if !i.hasValue {
		return nil
	}
	return i.it.Item().KeyCopy(nil)[1:]
}

func (i *BadgerIterator) Value() ([]byte, error) {
	if !i.hasValue {
		return nil, store.ErrNotFound
	}
	return i.it.Item().ValueCopy(nil)
}

func (i *BadgerIterator) Close() error {
	i.it.Close()
	return nil
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
