package upstream

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

const samplePage = `{"meta":{"found":9,"returned":3,"limit":3,"page":1},"data":[{"uuid":"a"},{"uuid":"b"},{"uuid":"c"}]}`

func TestTheNewsAPI_ForwardsSearchWithoutCategories(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	api := NewTheNewsAPI(server.URL, time.Second)
	result, err := api.Fetch(context.Background(), Request{
		Token:    "tok",
		Language: "en",
		Search:   "election",
		Page:     2,
		Limit:    3,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, exists := got["categories"]; exists {
		t.Error("Expected categories to be dropped when search is set")
	}
	if got["search"] != "election" || got["api_token"] != "tok" || got["page"] != "2" || got["limit"] != "3" || got["language"] != "en" {
		t.Errorf("Unexpected upstream params: %v", got)
	}
	if string(result.Body) != samplePage {
		t.Errorf("Expected body to be relayed verbatim, got %s", result.Body)
	}
	if result.Page.Len() != 3 {
		t.Errorf("Expected decoded page of 3, got %d", result.Page.Len())
	}
}

func TestTheNewsAPI_ForwardsCategories(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	api := NewTheNewsAPI(server.URL, time.Second)
	if _, err := api.Fetch(context.Background(), Request{Token: "tok", Language: "en", Categories: "sports", Page: 1, Limit: 3}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(query, "categories=sports") || strings.Contains(query, "search=") {
		t.Errorf("Unexpected query: %s", query)
	}
}

func TestTheNewsAPI_ClassifiesStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusBadRequest, KindUpstream},
		{http.StatusInternalServerError, KindUpstream},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"code":"x"}}`))
			}))
			defer server.Close()

			api := NewTheNewsAPI(server.URL, time.Second)
			_, err := api.Fetch(context.Background(), Request{Token: "tok", Categories: "tech", Page: 1, Limit: 3})
			if KindOf(err) != tt.want {
				t.Fatalf("Expected kind %v, got %v (%v)", tt.want, KindOf(err), err)
			}

			upErr := err.(*Error)
			if upErr.Status != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, upErr.Status)
			}
			if string(upErr.Body) != `{"error":{"code":"x"}}` {
				t.Errorf("Expected upstream body to be kept, got %s", upErr.Body)
			}
		})
	}
}

func TestTheNewsAPI_MissingToken(t *testing.T) {
	api := NewTheNewsAPI("http://127.0.0.1:1", time.Second)
	_, err := api.Fetch(context.Background(), Request{Categories: "tech", Page: 1, Limit: 3})
	if KindOf(err) != KindMisconfigured {
		t.Errorf("Expected misconfigured, got %v", err)
	}
}

func TestTheNewsAPI_UnreachableHidesToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	api := NewTheNewsAPI(url, time.Second)
	_, err := api.Fetch(context.Background(), Request{Token: "super-secret", Categories: "tech", Page: 1, Limit: 3})
	if KindOf(err) != KindBadGateway {
		t.Fatalf("Expected bad gateway, got %v", err)
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Errorf("Error leaks the token: %v", err)
	}
}

func TestTheNewsAPI_LogsMaskedToken(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	api := NewTheNewsAPI(server.URL, time.Second)
	if _, err := api.Fetch(context.Background(), Request{Token: "super-secret", Categories: "tech", Page: 1, Limit: 3}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if strings.Contains(buf.String(), "super-secret") {
		t.Errorf("Log leaks the token: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "api_token=%2A%2A%2A") {
		t.Errorf("Expected masked token in log, got %s", buf.String())
	}
}

func TestErrorFromStatus(t *testing.T) {
	err := ErrorFromStatus(418, []byte("teapot"), "text/plain")
	if err.Kind != KindUpstream || err.Status != 418 {
		t.Errorf("Unexpected error: %+v", err)
	}
	if KindOf(nil) != KindLocalFault {
		t.Error("Expected plain errors to classify as local faults")
	}
}
