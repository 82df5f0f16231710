package repository

import (
	"context"
	"sync"
)

// MemoryDocumentStore is the DocumentStore used when Redis is not configured.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	Data map[string][]byte
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		Data: make(map[string][]byte),
	}
}

func (m *MemoryDocumentStore) Put(_ context.Context, collection, id string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[documentKey(collection, id)] = append([]byte(nil), doc...)
	return nil
}

func (m *MemoryDocumentStore) Get(_ context.Context, collection, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.Data[documentKey(collection, id)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}
