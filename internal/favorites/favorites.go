// Package favorites keeps the user's saved articles.
package favorites

import (
	"fmt"
	"log"
	"sync"

	"flipnews/internal/models"
	"flipnews/internal/storage"
)

// Store is the favorites set, unique by article UUID and kept in the
// order articles were added. Every mutation persists the whole set.
type Store struct {
	mu        sync.RWMutex
	persister storage.Persister
	articles  []models.Article
	index     map[string]int
}

// Open loads the set from persister. Missing or unreadable storage yields
// an empty set.
func Open(persister storage.Persister) *Store {
	s := &Store{persister: persister}
	articles, err := persister.Load()
	if err != nil {
		log.Printf("Warning: starting with no favorites: %v", err)
		articles = nil
	}
	s.set(articles)
	return s
}

func (s *Store) set(articles []models.Article) {
	s.articles = s.articles[:0]
	s.index = make(map[string]int, len(articles))
	for _, a := range articles {
		if a.UUID == "" {
			continue
		}
		if _, dup := s.index[a.UUID]; dup {
			continue
		}
		s.index[a.UUID] = len(s.articles)
		s.articles = append(s.articles, a)
	}
}

func (s *Store) IsFavorite(uuid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[uuid]
	return ok
}

// Toggle adds article if absent and removes it otherwise. It reports
// whether the article is a favorite afterwards. The in-memory set changes
// even when persisting fails.
func (s *Store) Toggle(article models.Article) (bool, error) {
	if article.UUID == "" {
		return false, fmt.Errorf("article has no uuid")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var added bool
	if i, ok := s.index[article.UUID]; ok {
		next := make([]models.Article, 0, len(s.articles)-1)
		next = append(next, s.articles[:i]...)
		next = append(next, s.articles[i+1:]...)
		s.set(next)
	} else {
		s.index[article.UUID] = len(s.articles)
		s.articles = append(s.articles, article)
		added = true
	}

	if err := s.persister.Save(s.snapshot()); err != nil {
		return added, fmt.Errorf("failed to persist favorites: %w", err)
	}
	return added, nil
}

// List returns a copy of the set in display order.
func (s *Store) List() []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) snapshot() []models.Article {
	out := make([]models.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// At returns the i-th favorite in display order.
func (s *Store) At(i int) (models.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.articles) {
		return models.Article{}, false
	}
	return s.articles[i], true
}
