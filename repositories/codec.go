package repositories

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
)

// fetchJSON reads one key into v. badger.ErrKeyNotFound passes through so
// callers can map it to their own domain error.
func fetchJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func putJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}
