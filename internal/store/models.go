// Package store persists blog projects and cached SERP results. Pipeline
// and API code depend on the Store interface; memory and SQLite backends
// are interchangeable.
package store

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Project statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Project is one blog-post project. The analysis, plan, and content fields
// are opaque JSON produced by the pipeline stages; the store never
// interprets their internals.
type Project struct {
	ID                string          `json:"id"`
	PrimaryKeyword    string          `json:"primaryKeyword"`
	SecondaryKeywords []string        `json:"secondaryKeywords"`
	TargetAudience    string          `json:"targetAudience,omitempty"`
	ContentLength     string          `json:"contentLength,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	Status            string          `json:"status"`
	SerpAnalysis      json.RawMessage `json:"serpAnalysis,omitempty"`
	Seoplan           json.RawMessage `json:"seoplan,omitempty"`
	GeneratedContent  json.RawMessage `json:"generatedContent,omitempty"`
	WordCount         *int            `json:"wordCount,omitempty"`
	SeoScore          *int            `json:"seoScore,omitempty"`
	ReadingTime       *int            `json:"readingTime,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ProjectUpdate is a partial update. Nil fields are left untouched; a
// successful update always refreshes UpdatedAt.
type ProjectUpdate struct {
	PrimaryKeyword    *string         `json:"primaryKeyword,omitempty"`
	SecondaryKeywords *[]string       `json:"secondaryKeywords,omitempty"`
	TargetAudience    *string         `json:"targetAudience,omitempty"`
	ContentLength     *string         `json:"contentLength,omitempty"`
	Notes             *string         `json:"notes,omitempty"`
	Status            *string         `json:"status,omitempty"`
	SerpAnalysis      json.RawMessage `json:"serpAnalysis,omitempty"`
	Seoplan           json.RawMessage `json:"seoplan,omitempty"`
	GeneratedContent  json.RawMessage `json:"generatedContent,omitempty"`
	WordCount         *int            `json:"wordCount,omitempty"`
	SeoScore          *int            `json:"seoScore,omitempty"`
	ReadingTime       *int            `json:"readingTime,omitempty"`
}

// SerpResult is one cached search fetch plus its derived analysis. Rows
// are immutable; a refetch creates a new row instead of mutating the old.
type SerpResult struct {
	ID        string          `json:"id"`
	Keyword   string          `json:"keyword"`
	Results   json.RawMessage `json:"results"`
	Analysis  json.RawMessage `json:"analysis,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store is the repository contract shared by the memory and SQLite
// backends.
type Store interface {
	CreateProject(p Project) (Project, error)
	GetProject(id string) (Project, error)
	UpdateProject(id string, u ProjectUpdate) (Project, error)
	ListProjects() ([]Project, error)
	DeleteProject(id string) error

	CreateSerpResult(r SerpResult) (SerpResult, error)
	// LatestSerpResult returns the most recent result whose keyword matches
	// case-insensitively, or ErrNotFound.
	LatestSerpResult(keyword string) (SerpResult, error)

	Close() error
}

// applyUpdate merges a partial update into a project. The caller refreshes
// UpdatedAt.
func applyUpdate(p *Project, u ProjectUpdate) {
	if u.PrimaryKeyword != nil {
		p.PrimaryKeyword = *u.PrimaryKeyword
	}
	if u.SecondaryKeywords != nil {
		p.SecondaryKeywords = *u.SecondaryKeywords
	}
	if u.TargetAudience != nil {
		p.TargetAudience = *u.TargetAudience
	}
	if u.ContentLength != nil {
		p.ContentLength = *u.ContentLength
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.SerpAnalysis != nil {
		p.SerpAnalysis = u.SerpAnalysis
	}
	if u.Seoplan != nil {
		p.Seoplan = u.Seoplan
	}
	if u.GeneratedContent != nil {
		p.GeneratedContent = u.GeneratedContent
	}
	if u.WordCount != nil {
		p.WordCount = u.WordCount
	}
	if u.SeoScore != nil {
		p.SeoScore = u.SeoScore
	}
	if u.ReadingTime != nil {
		p.ReadingTime = u.ReadingTime
	}
}
