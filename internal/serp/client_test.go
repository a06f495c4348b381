package serp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	var gotMethod, gotPath, gotKey string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-KEY")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic": [{"title": "first"}, {"title": "second"}]}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("serp-key", srv.URL)
	payload, err := client.Search(context.Background(), "best desks", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/search" {
		t.Errorf("request = %s %s, want POST /search", gotMethod, gotPath)
	}
	if gotKey != "serp-key" {
		t.Errorf("X-API-KEY = %q, want serp-key", gotKey)
	}

	var body struct {
		Q   string `json:"q"`
		Num int    `json:"num"`
	}
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body.Q != "best desks" || body.Num != 10 {
		t.Errorf("body = %+v, want q=best desks num=10", body)
	}

	organic := Organic(payload, 10)
	if len(organic) != 2 {
		t.Fatalf("organic entries = %d, want 2", len(organic))
	}
}

func TestSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
		w.Write([]byte(`{"message": "invalid key"}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("bad-key", srv.URL)
	if _, err := client.Search(context.Background(), "kw", 10); err == nil {
		t.Fatal("expected error for 403 status")
	}
}

func TestSearchInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL("k", srv.URL)
	if _, err := client.Search(context.Background(), "kw", 10); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}

func TestOrganicTruncates(t *testing.T) {
	payload := json.RawMessage(`{"organic": [{"a":1},{"a":2},{"a":3}]}`)

	if got := Organic(payload, 2); len(got) != 2 {
		t.Errorf("entries = %d, want 2", len(got))
	}
	if got := Organic(payload, 10); len(got) != 3 {
		t.Errorf("entries = %d, want 3", len(got))
	}
}

func TestOrganicMissingArray(t *testing.T) {
	if got := Organic(json.RawMessage(`{"searchParameters": {}}`), 10); len(got) != 0 {
		t.Errorf("entries = %d, want 0 for payload without organic", len(got))
	}
}
