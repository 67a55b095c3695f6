package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const maxBodySize = 10 << 20

// TheNewsAPI fetches pages from the TheNewsAPI /v1/news/all endpoint.
type TheNewsAPI struct {
	baseURL string
	client  *http.Client
}

func NewTheNewsAPI(baseURL string, timeout time.Duration) *TheNewsAPI {
	return &TheNewsAPI{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *TheNewsAPI) RequiresToken() bool { return true }

func (t *TheNewsAPI) Fetch(ctx context.Context, req Request) (*Result, error) {
	if req.Token == "" {
		return nil, &Error{Kind: KindMisconfigured}
	}

	u, err := url.Parse(t.baseURL)
	if err != nil {
		return nil, &Error{Kind: KindLocalFault, Err: fmt.Errorf("parse upstream url: %w", err)}
	}
	params := buildParams(req)
	u.RawQuery = params.Encode()

	log.Printf("Proxying request to: %s (params: %s)", t.baseURL, redact(params).Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{Kind: KindLocalFault, Err: fmt.Errorf("new request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		// The token travels in the query string; never surface the URL.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &Error{Kind: KindBadGateway, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Kind: KindBadGateway, Err: fmt.Errorf("read body: %w", err)}
	}
	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Upstream API Error: %d %s", resp.StatusCode, truncate(body, 512))
		return nil, ErrorFromStatus(resp.StatusCode, body, contentType)
	}

	result := &Result{Body: body, ContentType: contentType}
	if err := json.Unmarshal(body, &result.Page); err != nil {
		log.Printf("Warning: upstream body is not a news page: %v", err)
	}
	return result, nil
}

// buildParams applies the search-over-categories rule. Categories are never
// sent together with a search.
func buildParams(req Request) url.Values {
	params := url.Values{}
	params.Set("api_token", req.Token)
	params.Set("language", req.Language)
	params.Set("limit", strconv.Itoa(req.Limit))
	params.Set("page", strconv.Itoa(req.Page))
	if req.Search != "" {
		params.Set("search", req.Search)
	} else {
		params.Set("categories", req.Categories)
	}
	return params
}

func redact(params url.Values) url.Values {
	masked := url.Values{}
	for k, v := range params {
		masked[k] = v
	}
	masked.Set("api_token", "***")
	return masked
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
