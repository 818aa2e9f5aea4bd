package state

import (
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps Badger for bootstrap-record persistence. Records are
// keyed by the project root path.
type Store struct {
	db *badger.DB
}

// OpenStore opens or creates a state store at the given path.
func OpenStore(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves the bootstrap record for a project root.
func (s *Store) Get(root string) (*Record, error) {
	var rec Record

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(root))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})

	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put stores the bootstrap record for a project root.
func (s *Store) Put(root string, rec *Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(root), value)
	})
}

// Delete removes the record for a project root.
func (s *Store) Delete(root string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(root))
	})
}

// Clear removes every record in the store.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// Roots lists every project root with a stored record.
func (s *Store) Roots() ([]string, error) {
	var roots []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			roots = append(roots, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return roots, nil
}
