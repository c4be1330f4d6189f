package apiv1

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cledumemoire/internal/usecase"
)

// getMemoire answers {memoire} for students and {memoires} for the others.
func (s *Server) getMemoire(w http.ResponseWriter, r *http.Request) {
	res, err := s.d.Memoires.Get(r.Context(), actor(r))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	if res.Own != nil {
		writeJSON(w, http.StatusOK, map[string]any{"memoire": toMemoire(res.Own)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"memoires": mapSlice(res.List, toMemoire)})
}

type memoirePatchRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Progress    *int       `json:"progress"`
	CurrentStep *string    `json:"currentStep"`
	DueDate     *time.Time `json:"dueDate"`
}

func (s *Server) updateMemoire(w http.ResponseWriter, r *http.Request) {
	var req memoirePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	mem, err := s.d.Memoires.Update(r.Context(), actor(r), chi.URLParam(r, "id"), usecase.MemoirePatch(req))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"memoire": toMemoire(mem)})
}

// exportMemoire renders the whole PDF before writing, so a failure still
// gets a JSON error instead of a truncated file.
func (s *Server) exportMemoire(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, err := s.d.Export.MemoirePDF(r.Context(), actor(r), chi.URLParam(r, "id"), &buf)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writePDF(w, name, &buf)
}

func writePDF(w http.ResponseWriter, name string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type exportContentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// exportContent typesets the editor text of the caller.
func (s *Server) exportContent(w http.ResponseWriter, r *http.Request) {
	var req exportContentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	var buf bytes.Buffer
	name, err := s.d.Export.ContentPDF(r.Context(), actor(r).ID, usecase.ExportContentInput(req), &buf)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writePDF(w, name, &buf)
}
