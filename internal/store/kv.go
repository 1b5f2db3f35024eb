// Package store provides the persistent key-value layer and its typed
// views (contacts, user profile, reminders, calibration data). All state
// that survives a restart goes through here.
package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
)

// KV is a thin wrapper over badger with JSON value encoding.
type KV struct {
	db *badger.DB
}

// Open opens (or creates) the store under dataPath.
func Open(dataPath string) (*KV, error) {
	opts := badger.DefaultOptions(filepath.Join(dataPath, "kv")).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &KV{db: db}, nil
}

// Close closes the underlying database.
func (kv *KV) Close() error {
	return kv.db.Close()
}

// PutJSON stores v under key as JSON.
func (kv *KV) PutJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return kv.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// GetJSON loads key into out. It returns false when the key is absent.
func (kv *KV) GetJSON(key string, out any) (bool, error) {
	var data []byte
	err := kv.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (kv *KV) Delete(key string) error {
	return kv.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Scan visits every key under prefix with its raw JSON value.
func (kv *KV) Scan(prefix string, fn func(key string, value []byte) error) error {
	return kv.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(string(item.Key()), value); err != nil {
				return err
			}
		}
		return nil
	})
}
