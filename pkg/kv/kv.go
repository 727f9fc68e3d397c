// Package kv provides the transactional ordered key/value adapter the rest
// of the engine is built on. It wraps bbolt, exposing named logical
// databases ("buckets" in bbolt terms) with byte-lexicographic key
// ordering, prefix iteration, and bound seeks, while keeping bbolt itself
// out of every other package's import list.
package kv

import (
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// DB is a single on-disk key/value store backing one index. Every logical
// database named in Open is created up front so later code can assume the
// bucket always exists.
type DB struct {
	bolt *bolt.DB
	path string
}

// Open opens (creating if absent) the store at dataDir/index.db and
// ensures every named logical database exists as a top-level bucket.
func Open(dataDir string, databases []string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("kv: create data dir: %w", err)
	}

	path := filepath.Join(dataDir, "index.db")
	bdb, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("kv: open %s: %w", path, err)
	}

	err = bdb.Update(func(tx *bolt.Tx) error {
		for _, name := range databases {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("kv: create database %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		bdb.Close()
		return nil, err
	}

	return &DB{bolt: bdb, path: path}, nil
}

// Path returns the on-disk file backing this store.
func (db *DB) Path() string { return db.path }

// Close closes the underlying file. It is safe to call once all
// transactions have completed.
func (db *DB) Close() error {
	return db.bolt.Close()
}

// Update runs fn inside a single read-write transaction. At most one write
// transaction is ever in flight per DB; bbolt serializes callers. A
// non-nil return aborts (rolls back) the transaction; a nil return commits
// it atomically.
func (db *DB) Update(fn func(*Txn) error) error {
	return db.bolt.Update(func(tx *bolt.Tx) error {
		return fn(&Txn{tx: tx})
	})
}

// View runs fn inside a read-only transaction against a stable snapshot.
// Any number of read transactions may run concurrently with each other and
// with the single in-flight write transaction.
func (db *DB) View(fn func(*RoTxn) error) error {
	return db.bolt.View(func(tx *bolt.Tx) error {
		return fn(&RoTxn{tx: tx})
	})
}

// Txn is a read-write transaction. It does not embed RoTxn; read-only
// helpers reach its data through Bucket(...).AsRo().
type Txn struct {
	tx *bolt.Tx
}

// RoTxn is a read-only transaction, a stable point-in-time snapshot of the
// store as of the moment it was opened.
type RoTxn struct {
	tx *bolt.Tx
}

// Bucket returns a read-write view over the named logical database. It
// panics if the database was not declared in Open, which indicates a
// programming error rather than a runtime condition callers should handle.
func (t *Txn) Bucket(name string) *Bucket {
	b := t.tx.Bucket([]byte(name))
	if b == nil {
		panic(fmt.Sprintf("kv: unknown database %q", name))
	}
	return &Bucket{b: b}
}

// Bucket returns a read-only view over the named logical database.
func (t *RoTxn) Bucket(name string) *RoBucket {
	b := t.tx.Bucket([]byte(name))
	if b == nil {
		panic(fmt.Sprintf("kv: unknown database %q", name))
	}
	return &RoBucket{b: b}
}
