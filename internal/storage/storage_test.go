package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"flipnews/internal/models"
)

func sampleArticles() []models.Article {
	return []models.Article{
		{
			UUID:        "b1",
			Title:       "Test Article 1",
			URL:         "https://example.com/1",
			Source:      "example.com",
			Categories:  []string{"tech"},
			PublishedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			UUID:        "a2",
			Title:       "Test Article 2",
			URL:         "https://example.com/2",
			Source:      "example.org",
			PublishedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		},
	}
}

func testRoundTrip(t *testing.T, p Persister) {
	t.Helper()
	defer p.Close()

	empty, err := p.Load()
	if err != nil || len(empty) != 0 {
		t.Fatalf("Expected empty set, got %v, %v", empty, err)
	}

	if err := p.Save(sampleArticles()); err != nil {
		t.Fatalf("Failed to save favorites: %v", err)
	}
	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("Failed to load favorites: %v", err)
	}
	if len(loaded) != 2 || loaded[0].UUID != "b1" || loaded[1].UUID != "a2" {
		t.Fatalf("Expected favorites in saved order, got %+v", loaded)
	}
	if !loaded[0].PublishedAt.Equal(sampleArticles()[0].PublishedAt) || loaded[0].Categories[0] != "tech" {
		t.Errorf("Expected fields to survive, got %+v", loaded[0])
	}

	if err := p.Save(loaded[1:]); err != nil {
		t.Fatalf("Failed to save favorites: %v", err)
	}
	loaded, _ = p.Load()
	if len(loaded) != 1 || loaded[0].UUID != "a2" {
		t.Errorf("Expected save to replace the set, got %+v", loaded)
	}
}

func TestJSONFile_RoundTrip(t *testing.T) {
	testRoundTrip(t, NewJSONFile(filepath.Join(t.TempDir(), "nested", "news_favorites.json")))
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	p, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "favorites.db"))
	if err != nil {
		t.Fatalf("Failed to create SQLite storage: %v", err)
	}
	testRoundTrip(t, p)
}

func TestJSONFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news_favorites.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewJSONFile(path).Load(); err == nil {
		t.Error("Expected error for corrupt file")
	}
}

func TestJSONFile_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewJSONFile(filepath.Join(dir, "news_favorites.json"))
	if err := f.Save(nil); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "news_favorites.json" {
		t.Errorf("Unexpected directory contents: %v", entries)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "news_favorites.json"))
	if string(data) != "[]" {
		t.Errorf("Expected empty array, got %s", data)
	}
}

func TestSQLiteStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.db")
	if err := os.WriteFile(path, []byte("definitely not a database file, just some text padding it out"), 0600); err != nil {
		t.Fatal(err)
	}

	p, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("Expected open to succeed lazily, got %v", err)
	}
	defer p.Close()
	if _, err := p.Load(); err == nil {
		t.Error("Expected error loading a corrupt database")
	}
}

func TestNewPersister(t *testing.T) {
	dir := t.TempDir()
	if p, err := NewPersister(BackendJSON, filepath.Join(dir, "f.json")); err != nil {
		t.Errorf("Unexpected error: %v", err)
	} else if _, ok := p.(*JSONFile); !ok {
		t.Errorf("Expected JSONFile, got %T", p)
	}

	p, err := NewPersister(BackendSQLite, filepath.Join(dir, "f.db"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer p.Close()
	if _, ok := p.(*SQLiteStorage); !ok {
		t.Errorf("Expected SQLiteStorage, got %T", p)
	}

	if _, err := NewPersister("redis", "x"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
