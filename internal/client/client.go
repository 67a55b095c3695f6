// Package client calls the FlipNews proxy over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flipnews/internal/models"
)

// APIError is a non-2xx response from the proxy
type APIError struct {
	Status  int
	Title   string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API Error: %d", e.Status)
}

// Client fetches pages of news from the proxy
type Client struct {
	baseURL  string
	language string
	http     *http.Client
}

func New(baseURL, language string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		http:     &http.Client{Timeout: timeout},
	}
}

// FetchPage requests one page for filter. Only the active half of the
// filter is sent, so a search never carries a category.
func (c *Client) FetchPage(ctx context.Context, filter models.Filter, page int) (models.PageResult, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(models.PageSize))
	if c.language != "" {
		params.Set("language", c.language)
	}
	if filter.Mode == models.FilterSearch {
		params.Set("search", filter.Value)
	} else {
		params.Set("categories", filter.Value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/news/all?"+params.Encode(), nil)
	if err != nil {
		return models.PageResult{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.PageResult{}, fmt.Errorf("fetching news: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return models.PageResult{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.PageResult{}, decodeAPIError(resp.StatusCode, body)
	}

	var result models.PageResult
	if err := json.Unmarshal(body, &result); err != nil {
		return models.PageResult{}, fmt.Errorf("decoding news page: %w", err)
	}
	return result, nil
}

// decodeAPIError reads an {error, message} body. Bodies in other shapes,
// such as relayed upstream errors, keep only the status.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	var title string
	if json.Unmarshal(payload.Error, &title) == nil {
		apiErr.Title = title
	}
	apiErr.Message = payload.Message
	return apiErr
}
