// Package upstream talks to the news sources the proxy forwards to.
package upstream

import (
	"context"

	"flipnews/internal/models"
)

// Request is a fully normalized upstream query. Exactly one of Categories
// and Search is non-empty.
type Request struct {
	Token      string
	Language   string
	Categories string
	Search     string
	Page       int
	Limit      int
}

// Result holds the raw upstream body, to be relayed verbatim, and its
// decoded page.
type Result struct {
	Body        []byte
	ContentType string
	Page        models.PageResult
}

// Fetcher retrieves one page of articles from a news source
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Result, error)
	// RequiresToken reports whether requests need a credential.
	RequiresToken() bool
}
