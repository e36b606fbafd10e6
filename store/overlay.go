package store

import (
	"bytes"

	"github.com/google/btree"
)

const treeDegree = 16

// TreeOverlay keeps pending writes in a btree on top of a read-only
// backing store. Reads consult the overlay first and fall through to
// the backing store. Write flushes the collected batch into the
// backing store, Discard drops everything.
//
// Overlays can be stacked, each CacheWrap call adds another layer.
type TreeOverlay struct {
	tree  *btree.BTree
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = (*TreeOverlay)(nil)
var _ CacheableKVStore = (*TreeOverlay)(nil)

// NewTreeOverlay returns an overlay on top of the given store. All
// writes are mirrored into the batch, so they can be replayed onto the
// backing store on Write.
func NewTreeOverlay(back ReadOnlyKVStore, batch Batch) *TreeOverlay {
	return &TreeOverlay{
		tree:  btree.New(treeDegree),
		back:  back,
		batch: batch,
	}
}

// MemStore returns an in-memory store for tests. Nothing persists.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewTreeOverlay(e, e.NewBatch())
}

// CacheWrap stacks another overlay on top of this one.
func (o *TreeOverlay) CacheWrap() KVCacheWrap {
	return NewTreeOverlay(o, NewNonAtomicBatch(o))
}

// Write flushes all pending writes into the backing store and resets
// the overlay.
func (o *TreeOverlay) Write() error {
	err := o.batch.Write()
	o.Discard()
	return err
}

// Discard throws away all pending writes.
func (o *TreeOverlay) Discard() {
	o.tree.Clear(false)
}

// Set stores the value in the overlay, shadowing the backing store.
func (o *TreeOverlay) Set(key, value []byte) error {
	o.tree.ReplaceOrInsert(&treeEntry{key: key, value: value})
	return o.batch.Set(key, value)
}

// Delete shadows the key with a tombstone so reads do not fall
// through to the backing store.
func (o *TreeOverlay) Delete(key []byte) error {
	o.tree.ReplaceOrInsert(&treeEntry{key: key, deleted: true})
	return o.batch.Delete(key)
}

// Get reads from the overlay if the key was touched, else from the
// backing store.
func (o *TreeOverlay) Get(key []byte) ([]byte, error) {
	if it := o.tree.Get(&treeEntry{key: key}); it != nil {
		e := it.(*treeEntry)
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return o.back.Get(key)
}

// Has reads from the overlay if the key was touched, else from the
// backing store.
func (o *TreeOverlay) Has(key []byte) (bool, error) {
	if it := o.tree.Get(&treeEntry{key: key}); it != nil {
		return !it.(*treeEntry).deleted, nil
	}
	return o.back.Has(key)
}

// treeEntry is the only item type stored in the overlay tree. A
// deletion is an entry with no value and the deleted flag set.
type treeEntry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = (*treeEntry)(nil)

func (e *treeEntry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(*treeEntry).key) < 0
}
