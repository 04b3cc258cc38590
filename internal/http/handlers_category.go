package http

import (
	"net/http"

	"cleverspend/internal/core"
	applog "cleverspend/internal/log"
)

type categoriesResponse struct {
	Categories []core.Category `json:"categories"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.expenses.Categories(r.Context())
	if err != nil {
		s.writeError(w, r, "list categories", applog.OpList, err)
		return
	}
	NewJSONResponse().Payload(categoriesResponse{Categories: cats}).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	req = req.sanitized()

	cat, err := s.expenses.AddCustomCategory(r.Context(), req.Name, req.Icon, req.Color)
	if err != nil {
		s.writeError(w, r, "create category", applog.OpCreate, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Category created",
		applog.FieldCategoryID, cat.ID, "name", cat.Name)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/categories/"+cat.ID).
		Payload(cat).
		Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.expenses.DeleteCategory(r.Context(), id); err != nil {
		s.writeError(w, r, "delete category", applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
