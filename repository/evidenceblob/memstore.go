package evidenceblob

import (
	"bytes"
	"sync"

	"github.com/ipfs/go-cid"

	"github.com/crasofuentes-hub/irrl/cidutil"
)

// MemStore is an in-memory Store, suitable for tests and the reference
// in-process deployment. Mirrors the teacher's localfs.CAS put-once /
// verify-on-read discipline without touching disk.
type MemStore struct {
	mu   sync.RWMutex
	objs map[string][]byte
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{objs: make(map[string][]byte)}
}

func (m *MemStore) Put(data []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := id.String()
	if existing, ok := m.objs[key]; ok {
		if !bytes.Equal(existing, data) {
			return cid.Undef, ErrImmutable
		}
		return id, nil
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objs[key] = stored
	return id, nil
}

func (m *MemStore) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	data, ok := m.objs[id.String()]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	got, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, ErrCIDMismatch
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemStore) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	_, ok := m.objs[id.String()]
	m.mu.RUnlock()
	return ok
}
