package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/staffdir/orgimport/internal/org"
)

func (s *Server) handleDepartmentTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.service.DepartmentTree(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	if tree == nil {
		tree = []*org.TreeNode{}
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleDepartmentPath(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondBadRequest(w, "Invalid department id")
		return
	}

	path, err := s.service.DepartmentPath(r.Context(), id)
	if err != nil {
		if errors.Is(err, org.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, err)
			return
		}
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, path)
}

func (s *Server) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondBadRequest(w, "Invalid department id")
		return
	}

	if err := s.service.DeleteDepartment(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, org.ErrNotFound):
			respondError(w, r, http.StatusNotFound, err)
		case errors.Is(err, org.ErrDepartmentHasChildren), errors.Is(err, org.ErrDepartmentHasEmployees):
			respondError(w, r, http.StatusConflict, err)
		default:
			respondError(w, r, http.StatusInternalServerError, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.service.SearchEmployees(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	if employees == nil {
		employees = []*org.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
