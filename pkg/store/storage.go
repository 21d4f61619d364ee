package store

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")
)

// Storage is the key-value engine underneath a TripleStore.
type Storage interface {
	// Begin starts a transaction. Read-only transactions see a snapshot.
	Begin(writable bool) (Transaction, error)
	Close() error
	Sync() error
}

// Transaction is a unit of work over the tables of a Storage.
type Transaction interface {
	// Get returns ErrNotFound when the key is absent.
	Get(table Table, key []byte) ([]byte, error)
	Set(table Table, key, value []byte) error
	Delete(table Table, key []byte) error

	// Scan iterates the keys of table that start with prefix, in order.
	// A nil prefix scans the whole table.
	Scan(table Table, prefix []byte) (Iterator, error)

	Commit() error
	Rollback() error
}

// Iterator walks keys in ascending order. Keys are returned without the
// table prefix.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() ([]byte, error)
	Close() error
}

// Table is a keyspace of the store.
type Table byte

const (
	// TableID2Str maps the hash part of an encoded term to its string form.
	TableID2Str Table = iota

	// Default graph indexes
	TableSPO
	TablePOS
	TableOSP

	// Indexes over every graph, keyed with the graph last or first
	TableSPOG
	TablePOSG
	TableOSPG
	TableGSPO
	TableGPOS
	TableGOSP

	TableGraphs

	TableCount
)

var tableNames = [TableCount]string{
	TableID2Str: "id2str",
	TableSPO:    "spo",
	TablePOS:    "pos",
	TableOSP:    "osp",
	TableSPOG:   "spog",
	TablePOSG:   "posg",
	TableOSPG:   "ospg",
	TableGSPO:   "gspo",
	TableGPOS:   "gpos",
	TableGOSP:   "gosp",
	TableGraphs: "graphs",
}

func (t Table) String() string {
	if t < TableCount {
		return tableNames[t]
	}
	return "unknown"
}

// PrefixKey namespaces key under table.
func PrefixKey(table Table, key []byte) []byte {
	result := make([]byte, 1+len(key))
	result[0] = byte(table)
	copy(result[1:], key)
	return result
}
