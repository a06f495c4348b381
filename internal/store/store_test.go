package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// runStoreTests exercises the shared Store contract against each backend.
func runStoreTests(t *testing.T, test func(t *testing.T, s Store)) {
	t.Helper()

	backends := []struct {
		name  string
		build func(t *testing.T) Store
	}{
		{"memory", func(t *testing.T) Store { return NewMemStore() }},
		{"sqlite", func(t *testing.T) Store {
			s, err := Open(":memory:")
			if err != nil {
				t.Fatalf("opening sqlite store: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		}},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			test(t, b.build(t))
		})
	}
}

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

func TestProjectCreateAndGet(t *testing.T) {
	runStoreTests(t, func(t *testing.T, s Store) {
		created, err := s.CreateProject(Project{
			PrimaryKeyword:    "standing desks",
			SecondaryKeywords: []string{"sit-stand desk"},
			TargetAudience:    "Office workers",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.ID == "" {
			t.Fatal("created project has no ID")
		}
		if created.Status != StatusDraft {
			t.Errorf("status = %q, want default %q", created.Status, StatusDraft)
		}
		if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
			t.Error("timestamps should be set on create")
		}

		got, err := s.GetProject(created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.PrimaryKeyword != "standing desks" || got.TargetAudience != "Office workers" {
			t.Errorf("got = %+v", got)
		}
		if len(got.SecondaryKeywords) != 1 || got.SecondaryKeywords[0] != "sit-stand desk" {
			t.Errorf("secondary keywords = %v", got.SecondaryKeywords)
		}
		if got.SerpAnalysis != nil || got.Seoplan != nil || got.GeneratedContent != nil {
			t.Error("JSON fields should be absent until set")
		}
	})
}

func TestProjectGetMissing(t *testing.T) {
	runStoreTests(t, func(t *testing.T, s Store) {
		if _, err := s.GetProject("nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestProjectPartialUpdate(t *testing.T) {
	runStoreTests(t, func(t *testing.T, s Store) {
		created, err := s.CreateProject(Project{
			PrimaryKeyword: "standing desks",
			Notes:          "keep this",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		updated, err := s.UpdateProject(created.ID, ProjectUpdate{
			Status:           strptr(StatusPublished),
			GeneratedContent: json.RawMessage(`{"title":"Best Desks"}`),
			WordCount:        intptr(2456),
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}

		if updated.Status != StatusPublished {
			t.Errorf("status = %q, want published", updated.Status)
		}
		if string(updated.GeneratedContent) != `{"title":"Best Desks"}` {
			t.Errorf("generated content = %s", updated.GeneratedContent)
		}
		if updated.WordCount == nil || *updated.WordCount != 2456 {
			t.Errorf("word count = %v", updated.WordCount)
		}
		// Untouched fields survive.
		if updated.PrimaryKeyword != "standing desks" || updated.Notes != "keep this" {
			t.Errorf("untouched fields changed: %+v", updated)
		}
		if updated.UpdatedAt.Before(created.UpdatedAt) {
			t.Error("updated_at went backwards")
		}

		got, err := s.GetProject(created.ID)
		if err != nil {
			t.Fatalf("get after update: %v", err)
		}
		if got.Status != StatusPublished || got.Notes != "keep this" {
			t.Errorf("persisted project = %+v", got)
		}
	})
}

func TestProjectUpdateMissing(t *testing.T) {
	runStoreTests(t, func(t *testing.T, s Store) {
		if _, err := s.UpdateProject("nope", ProjectUpdate{Notes: strptr("x")}); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestProjectListOrdering(t *testing.T) {
	runStoreTests(t, func(t *testing.T, s Store) {
		first, err := s.CreateProject(Project{PrimaryKeyword: "first"})
		if err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
		second, err := s.CreateProject(Project{PrimaryKeyword: "second"})
		if err != nil {
			t.Fatal(err)
		}

		projects, err := s.ListProjects()
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(projects) != 2 {
			t.Fatalf("projects = %d, want 2", len(projects))
		}
		if projects[0].ID != second.ID {
			t.Errorf("newest project should come first, got %q", projects[0].PrimaryKeyword)
		}

		// Updating the older project moves it to the front.
		time.Sleep(5 * time.Millisecond)
		if _, err := s.UpdateProject(first.ID, ProjectUpdate{Notes: strptr("touched")}); err != nil {
			t.Fatal(err)
		}
		projects, err = s.ListProjects()
		if err != nil {
			t.Fatal(err)
		}
		if projects[0].ID != first.ID {
			t.Errorf("updated project should come first, got %q", projects[0].PrimaryKeyword)
		}
	})
}

func TestProjectDelete(t *testing.T) {
	runStoreTests(t, func(t *testing.T, s Store) {
		created, err := s.CreateProject(Project{PrimaryKeyword: "gone soon"})
		if err != nil {
			t.Fatal(err)
		}

		if err := s.DeleteProject(created.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.GetProject(created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("get after delete: %v, want ErrNotFound", err)
		}
		if err := s.DeleteProject(created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete: %v, want ErrNotFound", err)
		}
	})
}

func TestSerpResultLatest(t *testing.T) {
	runStoreTests(t, func(t *testing.T, s Store) {
		old := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
		if _, err := s.CreateSerpResult(SerpResult{
			Keyword:   "standing desks",
			Results:   json.RawMessage(`{"organic":[]}`),
			CreatedAt: old,
		}); err != nil {
			t.Fatal(err)
		}
		newest, err := s.CreateSerpResult(SerpResult{
			Keyword:   "standing desks",
			Results:   json.RawMessage(`{"organic":[{"a":1}]}`),
			Analysis:  json.RawMessage(`{"tone":"Professional"}`),
			CreatedAt: old.Add(2 * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}

		got, err := s.LatestSerpResult("Standing Desks")
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		if got.ID != newest.ID {
			t.Errorf("latest ID = %q, want newest %q", got.ID, newest.ID)
		}
		if string(got.Analysis) != `{"tone":"Professional"}` {
			t.Errorf("analysis = %s", got.Analysis)
		}
	})
}

func TestSerpResultMissing(t *testing.T) {
	runStoreTests(t, func(t *testing.T, s Store) {
		if _, err := s.LatestSerpResult("never searched"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestSerpResultNullAnalysis(t *testing.T) {
	runStoreTests(t, func(t *testing.T, s Store) {
		if _, err := s.CreateSerpResult(SerpResult{
			Keyword: "partial",
			Results: json.RawMessage(`{}`),
		}); err != nil {
			t.Fatal(err)
		}

		got, err := s.LatestSerpResult("partial")
		if err != nil {
			t.Fatal(err)
		}
		if got.Analysis != nil {
			t.Errorf("analysis = %s, want absent", got.Analysis)
		}
		if got.CreatedAt.IsZero() {
			t.Error("created_at should default to now")
		}
	})
}
