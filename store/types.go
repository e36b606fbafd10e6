//nolint
package store

import "github.com/iov-one/valset"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = valset.ReadOnlyKVStore
type KVStore = valset.KVStore
type SetDeleter = valset.SetDeleter
type CacheableKVStore = valset.CacheableKVStore
type KVCacheWrap = valset.KVCacheWrap
type CommitKVStore = valset.CommitKVStore
type CommitID = valset.CommitID
