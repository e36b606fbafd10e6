package iavl

import (
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"

	"github.com/iov-one/valset/store"
)

const cacheSize = 10000

// CommitStore manages an iavl committed state. Every Commit persists
// the pending writes as the next tree version, so the store survives
// restarts at the last committed version.
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with the given backing database.
// Use dbm.NewMemDB() for tests, a leveldb instance for real deployments.
func NewCommitStore(db dbm.DB) CommitStore {
	tree := iavl.NewMutableTree(db, cacheSize)
	return CommitStore{tree: tree}
}

// Get returns the value stored under given key in the working tree.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	_, value := s.tree.Get(key)
	return value, nil
}

// Has checks if a key exists in the working tree.
func (s CommitStore) Has(key []byte) (bool, error) {
	return s.tree.Has(key), nil
}

// Set writes to the working tree. The write is not durable until Commit.
func (s CommitStore) Set(key, value []byte) error {
	s.tree.Set(key, value)
	return nil
}

// Delete removes from the working tree. The write is not durable until
// Commit.
func (s CommitStore) Delete(key []byte) error {
	s.tree.Remove(key)
	return nil
}

// Commit the pending writes as the next version to disk and return
// info about it.
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, err
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version. If there was a
// crash during the last commit, it is guaranteed to return a stable
// state, even if older.
func (s CommitStore) LoadLatestVersion() error {
	_, err := s.tree.Load()
	return err
}

// LatestVersion returns info on the latest version saved to disk.
func (s CommitStore) LatestVersion() store.CommitID {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}
}

// CacheWrap gives us a savepoint to perform actions and either write
// or discard them as a group.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	return store.NewTreeOverlay(s, store.NewNonAtomicBatch(s))
}
