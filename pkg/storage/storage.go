// Package storage provides access to the pre-authored workflow payload
// templates that the processor rewrites before submission.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// TemplateStore loads named workflow payload templates.
type TemplateStore interface {
	// Load returns the raw template payload for the given name.
	Load(ctx context.Context, name string) ([]byte, error)

	// List returns the available template names, sorted.
	List(ctx context.Context) ([]string, error)
}

// NotFoundError reports a template that does not exist in the store.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("workflow template %q not found", e.Name)
}

// FileStore serves templates from a directory of JSON files, the plugin's
// payload directory.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates a store over an existing directory.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("template directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory is not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template path %q is not a directory", dir)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Load reads a template by file name. Names must be plain file names; paths
// escaping the directory are rejected.
func (s *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template %q: %w", name, err)
	}
	s.logger.Debug("Loaded workflow template",
		zap.String("name", name),
		zap.Int("size_bytes", len(data)))
	return data, nil
}

// List returns the JSON file names in the directory.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("template name is required")
	}
	if name != filepath.Base(name) || strings.Contains(name, "..") {
		return fmt.Errorf("template name %q must be a plain file name", name)
	}
	return nil
}
