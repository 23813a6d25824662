package signatures

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/crytic/soltrace/symbols"
	"github.com/crytic/soltrace/utils"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
	"golang.org/x/exp/slices"
)

// Kind describes what a recorded signature names.
type Kind string

const (
	// KindFunction marks the signature of an externally reachable function or getter.
	KindFunction Kind = "function"
	// KindCustomError marks the signature of a custom error.
	KindCustomError Kind = "error"
)

var (
	functionsBucket = []byte("functions")
	errorsBucket    = []byte("errors")
)

// Entry is a signature recorded for a selector, with the contracts it was seen in.
type Entry struct {
	Signature string   `json:"signature"`
	Kind      Kind     `json:"kind"`
	Contracts []string `json:"contracts"`
}

// Database persists the function and custom error signatures of built symbol models to disk, keyed by selector. It
// lets selectors found in calldata or revert data be named even when their contract is not part of the compilation
// at hand.
type Database struct {
	db *bbolt.DB
}

// Open opens the signature database at the given path, creating it and its parent directory if they do not exist.
// Returns the database, or an error if it could not be opened.
func Open(path string) (*Database, error) {
	if err := utils.MakeDirectory(filepath.Dir(path)); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open signature database %s", path)
	}

	// Create the buckets if they don't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{functionsBucket, errorsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}
	return &Database{db: db}, nil
}

// Close closes the database.
func (d *Database) Close() error {
	return errors.WithStack(d.db.Close())
}

// RecordModel records the signature of every externally reachable function, getter and custom error of the model's
// contracts. Functions whose parameter types are unknown have no signature and are skipped.
// Returns the number of signatures that were not recorded before, or an error if the database could not be updated.
func (d *Database) RecordModel(model *symbols.Model) (int, error) {
	added := 0
	err := d.db.Update(func(tx *bbolt.Tx) error {
		functions, customErrors := tx.Bucket(functionsBucket), tx.Bucket(errorsBucket)
		for _, contract := range model.Contracts {
			contractName := contract.FullyQualifiedName()

			for _, function := range contract.Functions() {
				// Inherited entries are recorded under the contract that declares them
				if function.Contract != contract || function.Signature() == "" {
					continue
				}
				isNew, err := record(functions, *function.Selector, function.Signature(), KindFunction, contractName)
				if err != nil {
					return err
				}
				if isNew {
					added++
				}
			}

			for _, customError := range contract.CustomErrors {
				isNew, err := record(customErrors, customError.Selector, customError.Signature(), KindCustomError, contractName)
				if err != nil {
					return err
				}
				if isNew {
					added++
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return added, nil
}

// record merges a signature seen in a contract into the entries stored for its selector.
// Returns whether the signature was not stored for the selector before.
func record(bucket *bbolt.Bucket, selector symbols.Selector, signature string, kind Kind, contractName string) (bool, error) {
	entries, err := readEntries(bucket, selector)
	if err != nil {
		return false, err
	}

	isNew := true
	for i := range entries {
		if entries[i].Signature != signature {
			continue
		}
		isNew = false
		if !slices.Contains(entries[i].Contracts, contractName) {
			entries[i].Contracts = append(entries[i].Contracts, contractName)
			slices.Sort(entries[i].Contracts)
		}
	}
	if isNew {
		entries = append(entries, Entry{Signature: signature, Kind: kind, Contracts: []string{contractName}})
		slices.SortFunc(entries, func(a, b Entry) int {
			return strings.Compare(a.Signature, b.Signature)
		})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return false, err
	}
	return isNew, bucket.Put(selector[:], data)
}

// Lookup returns the signatures recorded for a selector, functions before custom errors. The result is empty if the
// selector was never recorded.
// Returns an error if the database could not be read.
func (d *Database) Lookup(selector symbols.Selector) ([]Entry, error) {
	var entries []Entry
	err := d.db.View(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{functionsBucket, errorsBucket} {
			bucketEntries, err := readEntries(tx.Bucket(bucket), selector)
			if err != nil {
				return err
			}
			entries = append(entries, bucketEntries...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entries, nil
}

// readEntries decodes the entries stored for a selector in a bucket.
func readEntries(bucket *bbolt.Bucket, selector symbols.Selector) ([]Entry, error) {
	data := bucket.Get(selector[:])
	if data == nil {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "corrupt signature entry for selector %s", selector)
	}
	return entries, nil
}
