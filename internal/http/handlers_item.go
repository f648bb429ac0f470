package http

import (
	"errors"
	"log/slog"
	"net/http"

	"mataam/internal/core"
	"mataam/internal/storage"
)

// handleListItems serves menu items, cached per category filter.
// ?admin=true bypasses the cache and includes hidden items.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	admin := isAdminRequest(r)
	categoryID := r.URL.Query().Get("categoryId")
	cacheKey := "items:" + categoryID
	if categoryID == "" {
		cacheKey = "items:all"
	}

	if !admin {
		if items, ok := s.itemsCache.Get(cacheKey); ok {
			s.metrics.cacheHit()
			slog.DebugContext(r.Context(), "Items cache hit",
				"category_id", categoryID, "count", len(items))
			respondJSON(w, http.StatusOK, itemsToJSON(items))
			return
		}
		s.metrics.cacheMiss()
	}

	items, err := s.store.ListItems(r.Context(), categoryID, !admin)
	if err != nil {
		slog.ErrorContext(r.Context(), "List items failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load items")
		return
	}

	if !admin {
		s.itemsCache.Set(cacheKey, items)
	}
	respondJSON(w, http.StatusOK, itemsToJSON(items))
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var body itemJSON
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item := body.toCore()
	item.ID = ""
	if err := item.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if _, err := s.store.GetCategory(r.Context(), item.CategoryID); errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusUnprocessableEntity, "category does not exist")
		return
	}

	created, err := s.store.CreateItem(r.Context(), item)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create item failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	s.invalidateMenuCaches()
	respondJSON(w, http.StatusCreated, toItemJSON(created))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var body itemJSON
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item := body.toCore()
	item.ID = r.PathValue("id")
	if err := item.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := s.store.UpdateItem(r.Context(), item)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Update item failed", "error", err, "id", item.ID)
		respondError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	s.invalidateMenuCaches()
	respondJSON(w, http.StatusOK, toItemJSON(updated))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.store.DeleteItem(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete item failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	s.invalidateMenuCaches()
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

func itemsToJSON(items []core.MenuItem) []itemJSON {
	out := make([]itemJSON, len(items))
	for i, m := range items {
		out[i] = toItemJSON(m)
	}
	return out
}
