// Package api exposes the generation pipeline and project store over an
// HTTP JSON API and an MCP server.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/postforge/internal/export"
	"github.com/kalambet/postforge/internal/imagegen"
	"github.com/kalambet/postforge/internal/llm"
	"github.com/kalambet/postforge/internal/pipeline"
	"github.com/kalambet/postforge/internal/store"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps holds everything the HTTP handlers need.
type Deps struct {
	Store     store.Store
	Analyzer  *pipeline.Analyzer
	Planner   *pipeline.Planner
	Writer    *pipeline.Writer
	Auto      *pipeline.AutoGenerator
	Images    *imagegen.Generator
	ImageOpts imagegen.Options
	// Token, when non-empty, requires Bearer auth on /api routes.
	Token string
}

// NewHandler builds the full route tree.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Route("/api", func(api chi.Router) {
		if deps.Token != "" {
			api.Use(BearerAuth(deps.Token))
		}

		api.Get("/ai/models", handleModels)
		api.Post("/serp/analyze", handleAnalyzeSerp(deps))
		api.Post("/seo/plan", handleGeneratePlan(deps))
		api.Post("/content/generate", handleGenerateContent(deps))
		api.Post("/images/generate", handleGenerateImages(deps))
		api.Post("/auto-generate", handleAutoGenerate(deps))
		api.Post("/content/export", handleExport)

		api.Route("/projects", func(pr chi.Router) {
			pr.Post("/", handleCreateProject(deps))
			pr.Get("/", handleListProjects(deps))
			pr.Get("/{id}", handleGetProject(deps))
			pr.Patch("/{id}", handleUpdateProject(deps))
			pr.Delete("/{id}", handleDeleteProject(deps))
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, llm.Models())
}

type analyzeRequest struct {
	Keyword string `json:"keyword"`
	Model   string `json:"model"`
}

func handleAnalyzeSerp(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := decodeBody(w, r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "Keyword is required", err)
			return
		}
		if req.Keyword == "" {
			httpError(w, http.StatusBadRequest, "Keyword is required", nil)
			return
		}

		result, err := deps.Analyzer.Analyze(r.Context(), req.Keyword, req.Model)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Failed to analyze SERP results", err)
			return
		}

		writeJSON(w, result)
	}
}

type planRequest struct {
	Keyword           string          `json:"keyword"`
	SecondaryKeywords []string        `json:"secondaryKeywords"`
	TargetAudience    string          `json:"targetAudience"`
	ContentLength     string          `json:"contentLength"`
	SerpAnalysis      json.RawMessage `json:"serpAnalysis"`
	Model             string          `json:"model"`
}

func handleGeneratePlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planRequest
		if err := decodeBody(w, r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "Keyword is required", err)
			return
		}
		if req.Keyword == "" {
			httpError(w, http.StatusBadRequest, "Keyword is required", nil)
			return
		}

		plan, err := deps.Planner.Plan(r.Context(), pipeline.PlanInput{
			Keyword:           req.Keyword,
			SecondaryKeywords: req.SecondaryKeywords,
			TargetAudience:    req.TargetAudience,
			ContentLength:     req.ContentLength,
			SerpAnalysis:      req.SerpAnalysis,
			Model:             req.Model,
		})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Failed to generate SEO plan", err)
			return
		}

		writeRawJSON(w, plan)
	}
}

type contentRequest struct {
	Keyword           string          `json:"keyword"`
	SecondaryKeywords []string        `json:"secondaryKeywords"`
	TargetAudience    string          `json:"targetAudience"`
	ContentLength     string          `json:"contentLength"`
	Notes             string          `json:"notes"`
	Seoplan           json.RawMessage `json:"seoplan"`
	Model             string          `json:"model"`
}

func handleGenerateContent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contentRequest
		if err := decodeBody(w, r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "Keyword is required", err)
			return
		}
		if req.Keyword == "" {
			httpError(w, http.StatusBadRequest, "Keyword is required", nil)
			return
		}

		content, err := deps.Writer.Write(r.Context(), pipeline.ContentInput{
			Keyword:           req.Keyword,
			SecondaryKeywords: req.SecondaryKeywords,
			TargetAudience:    req.TargetAudience,
			ContentLength:     req.ContentLength,
			Notes:             req.Notes,
			Seoplan:           req.Seoplan,
			Model:             req.Model,
		})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Failed to generate content", err)
			return
		}

		writeRawJSON(w, content)
	}
}

type imagesRequest struct {
	Keyword  string             `json:"keyword"`
	Title    string             `json:"title"`
	Sections []imagegen.Section `json:"sections"`
}

func handleGenerateImages(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req imagesRequest
		if err := decodeBody(w, r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "Keyword is required", err)
			return
		}
		if req.Keyword == "" {
			httpError(w, http.StatusBadRequest, "Keyword is required", nil)
			return
		}

		prompts := imagegen.DerivePrompts(req.Keyword, req.Title, req.Sections)
		images := deps.Images.Generate(r.Context(), prompts, deps.ImageOpts)
		writeJSON(w, map[string]any{"images": images})
	}
}

type autoGenerateRequest struct {
	Keyword           string   `json:"keyword"`
	SecondaryKeywords []string `json:"secondaryKeywords"`
	TargetAudience    string   `json:"targetAudience"`
	ContentLength     string   `json:"contentLength"`
	Notes             string   `json:"notes"`
	Model             string   `json:"model"`
}

// stageMessages maps a failed pipeline stage to the same summary the
// stage's own endpoint would return.
var stageMessages = map[string]string{
	pipeline.StageSerpAnalysis: "Failed to analyze SERP results",
	pipeline.StageSeoplan:      "Failed to generate SEO plan",
	pipeline.StageContent:      "Failed to generate content",
}

func handleAutoGenerate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req autoGenerateRequest
		if err := decodeBody(w, r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "Keyword is required", err)
			return
		}
		if req.Keyword == "" {
			httpError(w, http.StatusBadRequest, "Keyword is required", nil)
			return
		}

		result, err := deps.Auto.Run(r.Context(), pipeline.AutoInput{
			Keyword:           req.Keyword,
			SecondaryKeywords: req.SecondaryKeywords,
			TargetAudience:    req.TargetAudience,
			ContentLength:     req.ContentLength,
			Notes:             req.Notes,
			Model:             req.Model,
		})
		if err != nil {
			msg := "Failed to generate content"
			var stageErr *pipeline.StageError
			if errors.As(err, &stageErr) {
				if m, ok := stageMessages[stageErr.Stage]; ok {
					msg = m
				}
			}
			httpError(w, http.StatusInternalServerError, msg, err)
			return
		}

		writeJSON(w, result)
	}
}

type exportRequest struct {
	Content export.Content `json:"content"`
	Format  string         `json:"format"`
}

func handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeBody(w, r, &req); err != nil {
		httpError(w, http.StatusInternalServerError, "Failed to export content", err)
		return
	}

	payload := export.Render(req.Content, req.Format)

	w.Header().Set("Content-Type", export.MIMEType(req.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(req.Format)))
	w.Write(payload)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// httpError writes the error envelope: a fixed human-readable summary plus
// the verbatim underlying error when there is one.
func httpError(w http.ResponseWriter, code int, message string, err error) {
	body := map[string]any{"message": message}
	if err != nil {
		body["error"] = err.Error()
		slog.Error("request failed", "status", code, "message", message, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
