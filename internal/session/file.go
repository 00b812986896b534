package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	userIDKey = "currentUserId"
	phoneKey  = "currentPhone"

	// Older builds stored the id under this key; it is still written and
	// read as a fallback so existing sessions survive an upgrade.
	legacyUserIDKey = "sb_user_id_v1"
)

// FileStore keeps the session in a small JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Set(userID, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		values = map[string]string{}
	}
	values[userIDKey] = userID
	values[legacyUserIDKey] = userID
	if phone != "" {
		values[phoneKey] = phone
	}
	return s.write(values)
}

func (s *FileStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	if id := strings.TrimSpace(values[userIDKey]); id != "" {
		return id, nil
	}
	return strings.TrimSpace(values[legacyUserIDKey]), nil
}

func (s *FileStore) Phone() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(values[phoneKey]), nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	delete(values, userIDKey)
	delete(values, phoneKey)
	delete(values, legacyUserIDKey)
	return s.write(values)
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *FileStore) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
