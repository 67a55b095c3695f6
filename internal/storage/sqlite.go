package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"flipnews/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage keeps favorites in a SQLite table, one row per article.
type SQLiteStorage struct {
	db         *sql.DB
	path       string
	schemaOnce sync.Once
	schemaErr  error
}

// NewSQLiteStorage opens the database at dbPath. The schema is created on
// first use, so an unreadable file surfaces as a Load or Save error.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Ensure data directory exists with secure permissions (0750)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}
	log.Printf("Opening favorites database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func (s *SQLiteStorage) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS favorites (
			uuid TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			article TEXT NOT NULL,
			saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_favorites_position ON favorites(position);`)
	})
	if s.schemaErr != nil {
		return fmt.Errorf("failed to create favorites table in %s: %w", s.path, s.schemaErr)
	}
	return nil
}

// Load returns favorites in display order. Rows that fail to decode are
// skipped.
func (s *SQLiteStorage) Load() ([]models.Article, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT uuid, article FROM favorites ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		var article models.Article
		if err := json.Unmarshal([]byte(raw), &article); err != nil {
			log.Printf("Warning: skipping unreadable favorite %s: %v", id, err)
			continue
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	return articles, nil
}

// Save replaces the stored set in a single transaction.
func (s *SQLiteStorage) Save(articles []models.Article) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM favorites"); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO favorites (uuid, position, article) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, article := range articles {
		raw, err := json.Marshal(article)
		if err != nil {
			return fmt.Errorf("failed to encode favorite %s: %w", article.UUID, err)
		}
		if _, err := stmt.Exec(article.UUID, i, string(raw)); err != nil {
			return fmt.Errorf("failed to insert favorite %s: %w", article.UUID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit favorites: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
