package api

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/dgallion1/docpager/internal/viewer"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	docs, err := s.service.Documents()
	if err != nil {
		s.log.Error("list documents failed", "error", err)
		http.Error(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	links := make([]docLink, 0, len(docs))
	for _, d := range docs {
		links = append(links, docLink{Path: d.Path, URL: viewer.DocURL(d.Path)})
	}
	s.writePage(w, indexTemplate, indexData{Documents: links})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	v, err := s.service.Open(r.Context(), readerID(r), chi.URLParam(r, "*"))
	if err != nil {
		s.pageError(w, err)
		return
	}

	var article bytes.Buffer
	if err := v.WriteHTML(&article); err != nil {
		s.log.Error("render article failed", "path", v.Path, "error", err)
		http.Error(w, "failed to render document", http.StatusInternalServerError)
		return
	}

	snap := v.Snapshot()
	s.writePage(w, documentTemplate, documentData{
		Title:     snap.Title,
		Paged:     snap.Paged,
		ToggleURL: viewer.ToggleURL(v.Path),
		Article:   template.HTML(article.String()),
	})
}

func (s *Server) handleToggleForm(w http.ResponseWriter, r *http.Request) {
	docPath := chi.URLParam(r, "*")
	if _, err := s.service.Toggle(r.Context(), readerID(r), docPath); err != nil {
		s.pageError(w, err)
		return
	}
	http.Redirect(w, r, viewer.DocURL(viewer.CleanPath(docPath)), http.StatusSeeOther)
}

func (s *Server) handlePageForm(w http.ResponseWriter, r *http.Request) {
	action, index, err := parseAction(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	docPath := chi.URLParam(r, "*")
	if _, err := s.service.Step(r.Context(), readerID(r), docPath, action, index); err != nil {
		s.pageError(w, err)
		return
	}
	http.Redirect(w, r, viewer.DocURL(viewer.CleanPath(docPath)), http.StatusSeeOther)
}

func (s *Server) pageError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.log.Error("document failed", "error", err)
		http.Error(w, "failed to render document", code)
		return
	}
	http.Error(w, http.StatusText(code), code)
}

func (s *Server) writePage(w http.ResponseWriter, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.log.Error("template failed", "template", tmpl.Name(), "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
