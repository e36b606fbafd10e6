package store

// Batch groups writes to be executed at once against a store.
type Batch interface {
	SetDeleter
	Write() error
}

// EmptyKVStore never holds any data. It serves as the bottom layer
// under a TreeOverlay, which turns it into an in-memory store.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (e EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

func (e EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

func (e EmptyKVStore) Set(key, value []byte) error { return nil }

func (e EmptyKVStore) Delete(key []byte) error { return nil }

// NewBatch returns a batch writing into the void.
func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

// batchOp is one recorded write. A nil value with remove set encodes
// a deletion.
type batchOp struct {
	key    []byte
	value  []byte
	remove bool
}

func (o batchOp) apply(out SetDeleter) error {
	if o.remove {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// NonAtomicBatch piles up operations and replays them in order on
// Write. There is no rollback on partial failure, so it fits only
// backends where that cannot happen (in-memory stores).
type NonAtomicBatch struct {
	out SetDeleter
	ops []batchOp
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch creates an empty batch that will replay into the
// given store.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, batchOp{key: key, value: value})
	return nil
}

func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{key: key, remove: true})
	return nil
}

// Write replays all recorded operations and empties the batch.
func (b *NonAtomicBatch) Write() error {
	for _, op := range b.ops {
		if err := op.apply(b.out); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}
