package models

import (
	"strings"
	"time"
)

// PageSize is the number of articles requested per page.
const PageSize = 3

// DefaultCategory is used when neither a category nor a search is active.
const DefaultCategory = "tech"

// Article represents a single news article as returned by the news API
type Article struct {
	UUID        string    `json:"uuid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Keywords    string    `json:"keywords"`
	Snippet     string    `json:"snippet"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url"`
	Language    string    `json:"language"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
	Categories  []string  `json:"categories"`
}

// Meta carries the pagination metadata of a page of results
type Meta struct {
	Found    int `json:"found"`
	Returned int `json:"returned"`
	Limit    int `json:"limit"`
	Page     int `json:"page"`
}

// PageResult is one page of articles for a given filter
type PageResult struct {
	Meta Meta      `json:"meta"`
	Data []Article `json:"data"`
}

// Len returns the number of articles in the page.
func (p *PageResult) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// FilterMode selects between category browsing and free-text search
type FilterMode int

const (
	FilterCategory FilterMode = iota
	FilterSearch
)

func (m FilterMode) String() string {
	if m == FilterSearch {
		return "search"
	}
	return "category"
}

// Filter is the active filter context. Category and search are mutually
// exclusive; a filter holds exactly one of them.
type Filter struct {
	Mode  FilterMode
	Value string
}

// CategoryFilter returns a category filter, falling back to the default
// category for an empty value.
func CategoryFilter(category string) Filter {
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}
	return Filter{Mode: FilterCategory, Value: category}
}

// SearchFilter returns a search filter. An empty query yields the default
// category filter.
func SearchFilter(query string) Filter {
	query = strings.TrimSpace(query)
	if query == "" {
		return CategoryFilter("")
	}
	return Filter{Mode: FilterSearch, Value: query}
}

// Resolve applies the selection rule: a non-empty search wins over any
// category, then the category, then the default category.
func Resolve(categories, search string) Filter {
	if strings.TrimSpace(search) != "" {
		return SearchFilter(search)
	}
	return CategoryFilter(categories)
}

// Category returns the category value, or "" for a search filter.
func (f Filter) Category() string {
	if f.Mode == FilterCategory {
		return f.Value
	}
	return ""
}

// Search returns the search value, or "" for a category filter.
func (f Filter) Search() string {
	if f.Mode == FilterSearch {
		return f.Value
	}
	return ""
}

func (f Filter) String() string {
	return f.Mode.String() + ":" + f.Value
}
