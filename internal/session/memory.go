package session

import "sync"

// Memory is an in-memory Store used in tests and anywhere persistence
// across restarts is not wanted. Err, when set, is returned by every
// operation to simulate unavailable storage.
type Memory struct {
	mu     sync.Mutex
	userID string
	phone  string
	Err    error
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Set(userID, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.userID = userID
	if phone != "" {
		m.phone = phone
	}
	return nil
}

func (m *Memory) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.userID, nil
}

func (m *Memory) Phone() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.phone, nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.userID = ""
	m.phone = ""
	return nil
}
