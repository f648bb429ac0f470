package http

import (
	"errors"
	"log/slog"
	"net/http"

	"mataam/internal/core"
	"mataam/internal/storage"
)

const categoriesCacheKey = "categories"

// handleListCategories serves the public category list from cache.
// ?admin=true bypasses the cache and includes inactive categories.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	admin := isAdminRequest(r)

	if !admin {
		if cats, ok := s.categoriesCache.Get(categoriesCacheKey); ok {
			s.metrics.cacheHit()
			slog.DebugContext(r.Context(), "Categories cache hit", "count", len(cats))
			respondJSON(w, http.StatusOK, categoriesToJSON(cats))
			return
		}
		s.metrics.cacheMiss()
	}

	cats, err := s.store.ListCategories(r.Context(), !admin)
	if err != nil {
		slog.ErrorContext(r.Context(), "List categories failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	if !admin {
		s.categoriesCache.Set(categoriesCacheKey, cats)
	}
	respondJSON(w, http.StatusOK, categoriesToJSON(cats))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryJSON
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat := body.toCore()
	cat.ID = ""
	if err := cat.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.store.CreateCategory(r.Context(), cat)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create category failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	s.invalidateMenuCaches()
	respondJSON(w, http.StatusCreated, toCategoryJSON(created))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryJSON
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat := body.toCore()
	cat.ID = r.PathValue("id")
	if err := cat.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := s.store.UpdateCategory(r.Context(), cat)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Update category failed", "error", err, "id", cat.ID)
		respondError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	s.invalidateMenuCaches()
	respondJSON(w, http.StatusOK, toCategoryJSON(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.store.DeleteCategory(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		slog.WarnContext(r.Context(), "Delete category refused", "error", err, "id", id)
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	s.invalidateMenuCaches()
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

func categoriesToJSON(cats []core.Category) []categoryJSON {
	out := make([]categoryJSON, len(cats))
	for i, c := range cats {
		out[i] = toCategoryJSON(c)
	}
	return out
}
