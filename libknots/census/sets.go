package census

import (
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
)

// layoutSet is an in-memory set of map layout keys (see libknots.Map.LayoutKey).
//
// After one or more calls to TryAdd(), call Close() for cleanup.
type layoutSet struct {
	db *badger.DB
}

func (set *layoutSet) autoOpen() error {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			return errors.Wrap(err, "census: open layout set")
		}
	}
	return nil
}

// TryAdd adds the given key if it is not already present and returns true if it was added.
func (set *layoutSet) TryAdd(key []byte) (bool, error) {
	if err := set.autoOpen(); err != nil {
		return false, err
	}

	txn := set.db.NewTransaction(true)
	defer txn.Discard()

	added := false
	_, err := txn.Get(key)
	if err == nil {
		// no-op since the key is already in the db
	} else if err == badger.ErrKeyNotFound {
		err = txn.Set(key, nil)
		added = true
	}
	if err == nil {
		err = txn.Commit()
	}
	if err != nil {
		return false, errors.Wrap(err, "census: layout set")
	}
	return added, nil
}

// Close removes all previously added keys.
func (set *layoutSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}
