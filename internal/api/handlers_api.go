package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/docpager/internal/viewer"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.service.Documents()
	if err != nil {
		s.log.Error("list documents failed", "error", err)
		jsonError(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []viewer.DocumentInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	v, err := s.service.Open(r.Context(), readerID(r), chi.URLParam(r, "*"))
	if err != nil {
		s.docError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v.Snapshot())
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	v, err := s.service.Open(r.Context(), readerID(r), chi.URLParam(r, "*"))
	if err != nil {
		s.docError(w, err)
		return
	}
	snap := v.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"path":     snap.Path,
		"title":    snap.Title,
		"sections": snap.Sections,
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Toggle(r.Context(), readerID(r), chi.URLParam(r, "*"))
	if err != nil {
		s.docError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	action, index, err := parseAction(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, err := s.service.Step(r.Context(), readerID(r), chi.URLParam(r, "*"), action, index)
	if err != nil {
		s.docError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// parseAction reads the {action} URL parameter and, for goto, the index
// form or query value.
func parseAction(r *http.Request) (viewer.Action, int, error) {
	action := viewer.Action(chi.URLParam(r, "action"))
	switch action {
	case viewer.ActionNext, viewer.ActionPrev:
		return action, 0, nil
	case viewer.ActionGoto:
		raw := r.FormValue("index")
		if raw == "" {
			return "", 0, errors.New("index is required for goto")
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", 0, errors.New("index must be an integer")
		}
		return action, n, nil
	default:
		return "", 0, errors.New("action must be next, prev or goto")
	}
}

// docError maps a viewer error to a JSON error response.
func (s *Server) docError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.log.Error("document failed", "error", err)
		jsonError(w, "failed to render document", code)
		return
	}
	jsonError(w, err.Error(), code)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, viewer.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, viewer.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, viewer.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
