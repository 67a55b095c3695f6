package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"flipnews/internal/models"
)

// JSONFile stores favorites as a JSON array in a single file.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Load returns no articles and no error when the file does not exist.
func (f *JSONFile) Load() ([]models.Article, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}

	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("failed to decode favorites %s: %w", f.path, err)
	}
	return articles, nil
}

// Save writes to a temporary file and renames it over the old one.
func (f *JSONFile) Save(articles []models.Article) error {
	if articles == nil {
		articles = []models.Article{}
	}
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create favorites directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".favorites-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace favorites: %w", err)
	}
	return nil
}

func (f *JSONFile) Close() error { return nil }
