package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/postforge/internal/store"
)

type createProjectRequest struct {
	PrimaryKeyword    string   `json:"primaryKeyword"`
	SecondaryKeywords []string `json:"secondaryKeywords"`
	TargetAudience    string   `json:"targetAudience"`
	ContentLength     string   `json:"contentLength"`
	Notes             string   `json:"notes"`
	Status            string   `json:"status"`
}

func handleCreateProject(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProjectRequest
		if err := decodeBody(w, r, &req); err != nil {
			httpError(w, http.StatusBadRequest, "Invalid project data", err)
			return
		}
		if req.PrimaryKeyword == "" {
			httpError(w, http.StatusBadRequest, "Invalid project data", nil)
			return
		}

		project, err := deps.Store.CreateProject(store.Project{
			PrimaryKeyword:    req.PrimaryKeyword,
			SecondaryKeywords: req.SecondaryKeywords,
			TargetAudience:    req.TargetAudience,
			ContentLength:     req.ContentLength,
			Notes:             req.Notes,
			Status:            req.Status,
		})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Failed to create project", err)
			return
		}

		writeJSON(w, project)
	}
}

func handleListProjects(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := deps.Store.ListProjects()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Failed to fetch projects", err)
			return
		}

		if projects == nil {
			projects = []store.Project{}
		}
		writeJSON(w, projects)
	}
}

func handleGetProject(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		project, err := deps.Store.GetProject(id)
		if errors.Is(err, store.ErrNotFound) {
			httpError(w, http.StatusNotFound, "Project not found", nil)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Failed to fetch project", err)
			return
		}

		writeJSON(w, project)
	}
}

func handleUpdateProject(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var update store.ProjectUpdate
		if err := decodeBody(w, r, &update); err != nil {
			httpError(w, http.StatusBadRequest, "Invalid project data", err)
			return
		}

		project, err := deps.Store.UpdateProject(id, update)
		if errors.Is(err, store.ErrNotFound) {
			httpError(w, http.StatusNotFound, "Project not found", nil)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Failed to update project", err)
			return
		}

		writeJSON(w, project)
	}
}

func handleDeleteProject(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := deps.Store.DeleteProject(id)
		if errors.Is(err, store.ErrNotFound) {
			httpError(w, http.StatusNotFound, "Project not found", nil)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Failed to delete project", err)
			return
		}

		writeJSON(w, map[string]string{"message": "Project deleted successfully"})
	}
}
