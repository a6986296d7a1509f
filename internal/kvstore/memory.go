package kvstore

import "sync"

// Memory is an in-memory Backend with the same quota semantics as the
// SQLite implementation. Used as a test double.
type Memory struct {
	mu     sync.Mutex
	quota  int64
	values map[string][]byte

	// FailSet, when set, is returned by every Set call. Lets tests
	// simulate backend write failures beyond quota exhaustion.
	FailSet error
}

func NewMemory(quota int64) *Memory {
	return &Memory{
		quota:  quota,
		values: make(map[string][]byte),
	}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSet != nil {
		return m.FailSet
	}

	if m.quota > 0 {
		var others int64
		for k, v := range m.values {
			if k != key {
				others += int64(len(v))
			}
		}
		if others+int64(len(value)) > m.quota {
			return ErrQuotaExceeded
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func (m *Memory) Usage() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total int64
	for _, v := range m.values {
		total += int64(len(v))
	}
	return total, nil
}

func (m *Memory) Quota() int64 {
	return m.quota
}

func (m *Memory) Close() error {
	return nil
}
