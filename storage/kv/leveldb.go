// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kv

import (
	"github.com/NerfedChou/Quantum-Chain-sub004/ports"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is the production ports.KVStore adapter, backed by
// github.com/syndtr/goleveldb - the same on-disk engine the teacher's
// database package wraps for its own block/ticket indices. This adapter
// speaks the plain Get/Put/Delete/Exists/PrefixScan/AtomicBatchWrite
// contract directly rather than importing the teacher's database
// package, since that package's API is entangled with dcrd-specific
// bucket/cursor abstractions that have no home here (see SPEC_FULL.md's
// "Teacher dependencies deliberately dropped").
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if absent) a goleveldb database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// Close releases the underlying database handle.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Get implements ports.KVStore.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ports.ErrNotFound
	}
	return v, err
}

// Put implements ports.KVStore.
func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

// Delete implements ports.KVStore.
func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

// Exists implements ports.KVStore.
func (l *LevelDB) Exists(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

// PrefixScan implements ports.KVStore using goleveldb's range iterator
// over util.BytesPrefix(prefix), visiting keys in ascending order.
func (l *LevelDB) PrefixScan(prefix []byte, fn func(key, value []byte) bool) error {
	it := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	for it.Next() {
		k := append([]byte(nil), it.Key()...)
		v := append([]byte(nil), it.Value()...)
		if !fn(k, v) {
			break
		}
	}
	return it.Error()
}

// AtomicBatchWrite implements ports.KVStore via a single leveldb.Batch
// applied with one Write call, giving the all-or-nothing guarantee
// spec.md §4.6 requires of atomic_batch_write.
func (l *LevelDB) AtomicBatchWrite(puts map[string][]byte, dels [][]byte) error {
	batch := new(leveldb.Batch)
	for k, v := range puts {
		batch.Put([]byte(k), v)
	}
	for _, d := range dels {
		batch.Delete(d)
	}
	return l.db.Write(batch, nil)
}
