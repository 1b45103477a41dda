// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/floorplan-visualizer/backend/internal/models"
)

// MockStorage implements storage.Store for testing. File contents are kept
// in memory; GetFilePath materializes them to a temp file on demand so
// handlers that read from disk still work.
type MockStorage struct {
	mu       sync.RWMutex
	files    map[string]*models.FileInfo
	fileData map[string][]byte
	paths    map[string]string
	nextID   int
	tempDir  string
}

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files:    make(map[string]*models.FileInfo),
		fileData: make(map[string][]byte),
		paths:    make(map[string]string),
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*models.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.SaveBytes(name, data)
}

func (m *MockStorage) SaveBytes(name string, data []byte) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("test-file-%d", m.nextID)
	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}

	m.files[id] = info
	m.fileData[id] = data
	return info, nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	return info, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []*models.FileInfo
	for _, info := range m.files {
		list = append(list, info)
		if len(list) >= limit {
			break
		}
	}
	return list, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return fmt.Errorf("file not found: %s", id)
	}
	delete(m.files, id)
	delete(m.fileData, id)
	delete(m.paths, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	info.Name = newName
	return info, nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.fileData[id]
	if !ok {
		return "", fmt.Errorf("file not found: %s", id)
	}

	if path, ok := m.paths[id]; ok {
		return path, nil
	}

	if m.tempDir == "" {
		dir, err := os.MkdirTemp("", "mock_storage")
		if err != nil {
			return "", err
		}
		m.tempDir = dir
	}

	path := filepath.Join(m.tempDir, id)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	m.paths[id] = path
	return path, nil
}

// Cleanup removes any temp files created by GetFilePath
func (m *MockStorage) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tempDir != "" {
		os.RemoveAll(m.tempDir)
		m.tempDir = ""
	}
}
