// Package file provides file-based configuration and prompt stores.
package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// configFileName is the TOML file inside the data directory.
const configFileName = "config.toml"

// ConfigStore persists key-value configuration as a TOML file. Keys use
// dot notation ("retrieval.chunk_size"); on disk they become nested TOML
// tables so the file stays hand-editable, and are flattened back on load.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens (or initialises) the config store under configDir.
// An empty configDir means ~/.repoqa.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".repoqa")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, configFileName),
		data:     make(map[string]any),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Get retrieves a raw value by dot-notation key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string value, empty if absent or not a string.
func (s *ConfigStore) GetString(key string) string {
	if str, ok := s.lookup(key).(string); ok {
		return str
	}
	return ""
}

// GetInt retrieves an integer value, zero if absent. TOML decodes
// integers as int64 and values set in-process may be plain int; a float
// that happens to be whole (someone wrote "top_k = 3.0") counts too.
func (s *ConfigStore) GetInt(key string) int {
	switch v := s.lookup(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
		return 0
	default:
		return 0
	}
}

// GetBool retrieves a boolean value, false if absent or not a bool.
func (s *ConfigStore) GetBool(key string) bool {
	b, ok := s.lookup(key).(bool)
	return ok && b
}

func (s *ConfigStore) lookup(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

// Set stores a value and persists the file immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.persist()
}

// Delete removes a key and persists the change.
func (s *ConfigStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return s.persist()
}

// persist writes the nested TOML rendering of the flat key space to a
// temp file, then renames it over the config file so a crash mid-write
// never leaves a truncated config. Caller must hold the write lock.
func (s *ConfigStore) persist() error {
	encoded, err := toml.Marshal(expandKeys(s.data))
	if err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

// Load re-reads the config file, replacing in-memory state. A missing
// file resets the store to empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var nested map[string]any
	if err := toml.Unmarshal(raw, &nested); err != nil {
		return err
	}

	flat := make(map[string]any)
	flattenInto(flat, "", nested)
	s.data = flat
	return nil
}

// flattenInto walks nested TOML tables and records every leaf under its
// dot-notation key.
func flattenInto(dst map[string]any, prefix string, m map[string]any) {
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flattenInto(dst, full, table)
			continue
		}
		dst[full] = value
	}
}

// expandKeys is the inverse of flattenInto: dot-notation keys become
// nested tables. A leaf colliding with a table path loses to the table.
func expandKeys(flat map[string]any) map[string]any {
	nested := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := nested
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		leaf := parts[len(parts)-1]
		if _, taken := node[leaf].(map[string]any); !taken {
			node[leaf] = value
		}
	}
	return nested
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
