package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// recordedRequest captures what the CLI sent to the server.
type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]json.RawMessage
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*apiClient, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&rec.body)
		}
		requests = append(requests, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := &apiClient{
		baseURL:    srv.URL,
		token:      "cli-token",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	return client, &requests
}

func TestAPIClientSendsAuthAndBody(t *testing.T) {
	client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q, want application/json", ct)
		}
		w.Write([]byte(`{"ok": true}`))
	})

	resp, err := client.post("/api/auto-generate", map[string]any{"keyword": "desks"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	if len(*requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(*requests))
	}
	req := (*requests)[0]
	if req.method != "POST" || req.path != "/api/auto-generate" {
		t.Errorf("request = %s %s", req.method, req.path)
	}
	if req.auth != "Bearer cli-token" {
		t.Errorf("auth = %q, want Bearer cli-token", req.auth)
	}
	if string(req.body["keyword"]) != `"desks"` {
		t.Errorf("body keyword = %s", req.body["keyword"])
	}
}

func TestAPIClientOmitsAuthWithoutToken(t *testing.T) {
	client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	client.token = ""

	resp, err := client.get("/api/projects")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if auth := (*requests)[0].auth; auth != "" {
		t.Errorf("auth = %q, want no header without a token", auth)
	}
}

func TestDecodeJSONErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "Failed to generate content"}`))
	})

	resp, err := client.post("/api/auto-generate", map[string]any{"keyword": "kw"})
	if err != nil {
		t.Fatal(err)
	}

	var out map[string]any
	err = decodeJSON(resp, &out)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "Failed to generate content") {
		t.Errorf("error = %v, want status and server body", err)
	}
}

func TestSaveProject(t *testing.T) {
	client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/api/projects":
			w.Write([]byte(`{"id": "proj-1", "primaryKeyword": "desks"}`))
		case r.Method == "PATCH" && r.URL.Path == "/api/projects/proj-1":
			w.Write([]byte(`{"id": "proj-1"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	id, err := saveProject(client, "desks", []string{"sit-stand"}, "Office workers", "", "",
		json.RawMessage(`{"tone":"Professional"}`),
		json.RawMessage(`{"suggestedTitle":"Best Desks"}`),
		json.RawMessage(`{"title":"Best Desks"}`),
	)
	if err != nil {
		t.Fatalf("saveProject: %v", err)
	}
	if id != "proj-1" {
		t.Errorf("id = %q, want proj-1", id)
	}

	if len(*requests) != 2 {
		t.Fatalf("requests = %d, want create + patch", len(*requests))
	}

	create := (*requests)[0]
	if string(create.body["primaryKeyword"]) != `"desks"` {
		t.Errorf("create primaryKeyword = %s", create.body["primaryKeyword"])
	}

	patch := (*requests)[1]
	for _, field := range []string{"serpAnalysis", "seoplan", "generatedContent"} {
		if len(patch.body[field]) == 0 {
			t.Errorf("patch body missing %s", field)
		}
	}
}

func TestSaveProjectPatchFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "PATCH" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message": "Failed to update project"}`))
			return
		}
		w.Write([]byte(`{"id": "proj-1"}`))
	})

	_, err := saveProject(client, "desks", nil, "", "", "", nil, nil, json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("expected error when saving generated content fails")
	}
}
