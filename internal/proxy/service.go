// Package proxy normalizes news queries and forwards them upstream with the
// server-side credential.
package proxy

import (
	"context"
	"errors"
	"strings"

	"flipnews/internal/models"
	"flipnews/internal/upstream"
)

const (
	DefaultLanguage = "en"
	DefaultLimit    = models.PageSize
	DefaultPage     = 1
)

// Query holds the caller-supplied filters. Zero values take the defaults.
type Query struct {
	Categories string
	Search     string
	Page       int
	Limit      int
	Language   string
}

// Service forwards news queries to the configured upstream
type Service struct {
	fetcher upstream.Fetcher
	token   string
}

func NewService(fetcher upstream.Fetcher, token string) *Service {
	return &Service{fetcher: fetcher, token: token}
}

// Configured reports whether the service can serve queries.
func (s *Service) Configured() bool {
	return s.token != "" || !s.fetcher.RequiresToken()
}

// GetNews normalizes q, injects the credential and fetches one page. The
// credential never leaves the service.
func (s *Service) GetNews(ctx context.Context, q Query) (*upstream.Result, error) {
	if !s.Configured() {
		return nil, &upstream.Error{Kind: upstream.KindMisconfigured}
	}

	req := Normalize(q)
	req.Token = s.token

	result, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		var upErr *upstream.Error
		if !errors.As(err, &upErr) {
			return nil, &upstream.Error{Kind: upstream.KindLocalFault, Err: err}
		}
		return nil, err
	}
	return result, nil
}

// Normalize applies defaults and the selection rule: a non-empty search is
// forwarded and any category dropped, else the category, else "tech".
func Normalize(q Query) upstream.Request {
	req := upstream.Request{
		Language: strings.TrimSpace(q.Language),
		Page:     q.Page,
		Limit:    q.Limit,
	}
	if req.Language == "" {
		req.Language = DefaultLanguage
	}
	if req.Page < 1 {
		req.Page = DefaultPage
	}
	if req.Limit < 1 {
		req.Limit = DefaultLimit
	}

	filter := models.Resolve(q.Categories, q.Search)
	req.Search = filter.Search()
	req.Categories = filter.Category()
	return req
}
