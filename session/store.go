package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileStore keeps key/value pairs in a flat JSON object on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by path. The file is created on the
// first Set.
func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

func (s *FileStore) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []byte("{}"), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("存储文件 %s 不是合法的 JSON", s.path)
	}
	return data, nil
}

// Get returns the value for key.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.read()
	if err != nil {
		return "", false, err
	}
	v := gjson.GetBytes(data, gjson.Escape(key))
	if !v.Exists() {
		return "", false, nil
	}
	return v.String(), true, nil
}

// Set stores value under key.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.read()
	if err != nil {
		return err
	}
	out, err := sjson.SetBytes(data, gjson.Escape(key), value)
	if err != nil {
		return fmt.Errorf("写入键 %s 失败: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("创建存储目录失败: %w", err)
	}
	return os.WriteFile(s.path, out, 0o644)
}

// MemoryStore is an in-process Store.
type MemoryStore map[string]string

// Get returns the value for key.
func (m MemoryStore) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

// Set stores value under key.
func (m MemoryStore) Set(key, value string) error {
	m[key] = value
	return nil
}
