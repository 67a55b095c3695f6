package storage

import "flipnews/internal/models"

// Persister loads and saves the whole favorites set. Save replaces
// whatever was stored before; order is preserved.
type Persister interface {
	Load() ([]models.Article, error)
	Save(articles []models.Article) error
	Close() error
}
