package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"flipnews/internal/models"
)

func TestClient_FetchPageCategory(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/news/all" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		got = r.URL.Query()
		w.Write([]byte(`{"meta":{"found":6,"returned":3,"limit":3,"page":2},"data":[{"uuid":"a"},{"uuid":"b"},{"uuid":"c"}]}`))
	}))
	defer server.Close()

	c := New(server.URL+"/", "en", time.Second)
	page, err := c.FetchPage(context.Background(), models.CategoryFilter("sports"), 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if page.Len() != 3 || page.Meta.Page != 2 {
		t.Errorf("Unexpected page: %+v", page)
	}
	if got.Get("categories") != "sports" || got.Get("page") != "2" || got.Get("limit") != "3" || got.Get("language") != "en" {
		t.Errorf("Unexpected params: %v", got)
	}
	if got.Has("search") {
		t.Error("Expected no search param for a category filter")
	}
}

func TestClient_FetchPageSearchOmitsCategories(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"meta":{},"data":[]}`))
	}))
	defer server.Close()

	c := New(server.URL, "", time.Second)
	if _, err := c.FetchPage(context.Background(), models.SearchFilter("climate"), 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got.Has("categories") {
		t.Errorf("Expected no categories param, got %v", got)
	}
	if got.Get("search") != "climate" {
		t.Errorf("Expected search param, got %v", got)
	}
}

func TestClient_DecodesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Auth Error","message":"TheNewsApi authentication failed."}`))
	}))
	defer server.Close()

	c := New(server.URL, "en", time.Second)
	_, err := c.FetchPage(context.Background(), models.SearchFilter("election"), 1)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Title != "Auth Error" {
		t.Errorf("Unexpected error: %+v", apiErr)
	}
	if apiErr.Error() != "TheNewsApi authentication failed." {
		t.Errorf("Unexpected message: %s", apiErr.Error())
	}
}

func TestClient_RelayedUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"malformed_parameters"}}`))
	}))
	defer server.Close()

	c := New(server.URL, "en", time.Second)
	_, err := c.FetchPage(context.Background(), models.CategoryFilter("tech"), 1)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Error() != "API Error: 400" {
		t.Errorf("Unexpected message: %s", apiErr.Error())
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := New(server.URL, "en", time.Second)
	if _, err := c.FetchPage(context.Background(), models.CategoryFilter("tech"), 1); err == nil {
		t.Error("Expected error for unreachable proxy")
	}
}
