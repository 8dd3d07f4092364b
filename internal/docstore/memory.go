package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in process. It backs STORE_DRIVER=memory and
// the tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (m *MemoryStore) Get(ctx context.Context, collection, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := c.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(data), nil
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	return m.filter(collection, func(json.RawMessage) bool { return true }), nil
}

func (m *MemoryStore) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	want, err := valueText(value)
	if err != nil {
		return nil, err
	}
	return m.filter(collection, func(data json.RawMessage) bool {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return false
		}
		raw, ok := fields[field]
		if !ok || string(raw) == "null" {
			return false
		}
		return fieldText(raw) == want
	}), nil
}

func (m *MemoryStore) filter(collection string, keep func(json.RawMessage) bool) []Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return []Document{}
	}
	out := make([]Document, 0, len(c.order))
	for _, key := range c.order {
		data := c.docs[key]
		if keep(data) {
			out = append(out, Document{Key: key, Data: clone(data)})
		}
	}
	return out
}

func (m *MemoryStore) Set(ctx context.Context, collection, key string, data json.RawMessage) error {
	if !json.Valid(data) {
		return fmt.Errorf("set %s: invalid JSON", Path(collection, key))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		c = &memCollection{docs: make(map[string]json.RawMessage)}
		m.collections[collection] = c
	}
	if _, exists := c.docs[key]; !exists {
		c.order = append(c.order, key)
	}
	c.docs[key] = clone(data)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		return ErrNotFound
	}
	data, ok := c.docs[key]
	if !ok {
		return ErrNotFound
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("update %s: %w", Path(collection, key), err)
	}
	for k, v := range fields {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("update %s: %w", Path(collection, key), err)
	}
	c.docs[key] = merged
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		return nil
	}
	if _, exists := c.docs[key]; !exists {
		return nil
	}
	delete(c.docs, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func clone(data json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(data))
	copy(out, data)
	return out
}
