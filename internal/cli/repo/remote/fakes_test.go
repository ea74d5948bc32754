package remote

import (
	"context"
	"sync"
	"sync/atomic"

	"ProductManager/internal/cli/docstore"
	"ProductManager/internal/cli/model"
)

type fakeRegistration struct {
	removes atomic.Int32
}

func (r *fakeRegistration) Remove() { r.removes.Add(1) }

// fakeStore records calls and lets tests drive the listener callbacks.
type fakeStore struct {
	mu         sync.Mutex
	added      []any
	set        map[string]any
	deleted    []string
	err        error
	docs       []docstore.DocumentSnapshot
	query      docstore.Query
	reg        *fakeRegistration
	onSnapshot func([]docstore.DocumentSnapshot)
	onError    func(error)
}

func newFakeStore() *fakeStore {
	return &fakeStore{set: map[string]any{}, reg: &fakeRegistration{}}
}

func (f *fakeStore) Add(_ context.Context, _ string, data any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.added = append(f.added, data)
	return "new-id", nil
}

func (f *fakeStore) Set(_ context.Context, _ string, id string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.set[id] = data
	return nil
}

func (f *fakeStore) Delete(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) Get(_ context.Context, q docstore.Query) ([]docstore.DocumentSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = q
	return f.docs, f.err
}

func (f *fakeStore) Listen(q docstore.Query, onSnapshot func([]docstore.DocumentSnapshot), onError func(error)) docstore.ListenerRegistration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = q
	f.onSnapshot = onSnapshot
	f.onError = onError
	return f.reg
}

func (f *fakeStore) emit(docs ...docstore.DocumentSnapshot) {
	f.mu.Lock()
	cb := f.onSnapshot
	f.mu.Unlock()
	if docs == nil {
		docs = []docstore.DocumentSnapshot{}
	}
	cb(docs)
}

func (f *fakeStore) fail(err error) {
	f.mu.Lock()
	cb := f.onError
	f.mu.Unlock()
	cb(err)
}

func doc(id, data string) docstore.DocumentSnapshot {
	return docstore.DocumentSnapshot{ID: id, Data: []byte(data)}
}

type fakeCache struct {
	mu    sync.Mutex
	saved map[string][]model.Product
}

func (c *fakeCache) SaveSnapshot(userID string, products []model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saved == nil {
		c.saved = map[string][]model.Product{}
	}
	c.saved[userID] = products
	return nil
}

func (c *fakeCache) LoadSnapshot(userID string) ([]model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved[userID], nil
}

func (c *fakeCache) get(userID string) ([]model.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.saved[userID]
	return p, ok
}
