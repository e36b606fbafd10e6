package valset

//////////////////////////////////////////////////////////
// Defines all public interfaces for interacting with stores.
//
// The registry only ever reads and writes records by key, so the
// iteration contract of a full database interface is intentionally
// left out. Every backing store must implement at least these methods.

// ReadOnlyKVStore is a simple interface to query data.
type ReadOnlyKVStore interface {
	// Get returns nil iff key doesn't exist. Panics on nil key.
	Get(key []byte) ([]byte, error)

	// Has checks if a key exists. Panics on nil key.
	Has(key []byte) (bool, error)
}

// KVStore is a simple interface to get/set data.
type KVStore interface {
	ReadOnlyKVStore

	// Set sets the key. Panics on nil key.
	Set(key, value []byte) error

	// Delete deletes the key. Panics on nil key.
	Delete(key []byte) error
}

// SetDeleter is a minimal interface for writing. Both KVStore and
// Batch satisfy it.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

///////////////////////////////////////////////////////////
// Caching conditional execution
//
// These extend KVStore to allow grouping temporary writes
// which may be committed/discarded together.
// Like Postgresql SAVEPOINT / ROLLBACK TO SAVEPOINT.

// CacheableKVStore is a KVStore that supports CacheWrapping.
//
// CacheWrap() should not return a Committer, since Commit() on
// cache-wraps make no sense.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap allows us to maintain a scratch-pad of uncommitted data
// that we can view with all queries.
//
// At the end, call Write to use the cached data, or Discard to drop it.
type KVCacheWrap interface {
	// CacheableKVStore allows us to use this Cache recursively
	CacheableKVStore

	// Write syncs with the underlying store.
	Write() error

	// Discard invalidates this CacheWrap and releases all data
	Discard()
}

///////////////////////////////////////////////////////////////
// Loading / committing data
//
// These reflect stores that can persist state to disk, load on
// start up, and maintain some history.

// CommitKVStore is a store that can persist a sequence of versions.
type CommitKVStore interface {
	KVStore

	// LoadLatestVersion loads the latest persisted version. If there was
	// a crash during the last commit, it is guaranteed to return a
	// stable state, even if older.
	LoadLatestVersion() error

	// Commit the pending writes as the next version and return info
	// about it.
	Commit() (CommitID, error)

	// LatestVersion returns info on the latest version saved to disk.
	LatestVersion() CommitID
}

// CommitID identifies a committed version of the store.
type CommitID struct {
	Version int64
	Hash    []byte
}
