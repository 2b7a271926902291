package storage

import (
	"context"
	"sync"
)

type scopedKey struct {
	scope string
	key   string
}

// Memory is an in-process KV. A positive quota caps the total stored bytes.
type Memory struct {
	mu     sync.Mutex
	data   map[scopedKey][]byte
	writes map[scopedKey]int
	quota  int
}

// NewMemory creates an empty store without a quota
func NewMemory() *Memory {
	return &Memory{
		data:   map[scopedKey][]byte{},
		writes: map[scopedKey]int{},
	}
}

// SetQuota limits the total size of stored values. Zero disables the limit.
func (m *Memory) SetQuota(bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota = bytes
}

func (m *Memory) Get(_ context.Context, scope, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[scopedKey{scope, key}]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte{}, v...), nil
}

func (m *Memory) Put(_ context.Context, scope, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := scopedKey{scope, key}
	if m.quota > 0 {
		total := len(value)
		for sk, v := range m.data {
			if sk != k {
				total += len(v)
			}
		}
		if total > m.quota {
			return ErrQuotaExceeded
		}
	}
	m.data[k] = append([]byte{}, value...)
	m.writes[k]++
	return nil
}

func (m *Memory) Delete(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, scopedKey{scope, key})
	return nil
}

func (m *Memory) Close() error { return nil }

// Writes returns how many successful Put calls hit the key
func (m *Memory) Writes(scope, key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[scopedKey{scope, key}]
}

// Has reports whether the key exists
func (m *Memory) Has(scope, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[scopedKey{scope, key}]
	return ok
}
