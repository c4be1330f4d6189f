package apiv1

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cledumemoire/internal/usecase"
)

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	list, err := s.d.Documents.List(r.Context(), actor(r))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": mapSlice(list, toDocument)})
}

// uploadDocument expects multipart fields file, category and memoireId.
func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	file, closeFile, err := formFile(r, "file")
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	defer closeFile()

	doc, err := s.d.Documents.Upload(r.Context(), actor(r), file, r.FormValue("category"), r.FormValue("memoireId"))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"document": toDocument(doc)})
}

type reviewRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

func (s *Server) reviewDocument(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	doc, err := s.d.Documents.Review(r.Context(), actor(r), chi.URLParam(r, "id"), req.Status, req.Feedback)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": toDocument(doc)})
}

func (s *Server) listResources(w http.ResponseWriter, r *http.Request) {
	list, err := s.d.Resources.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": mapSlice(list, toResource)})
}

type resourceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Link        string `json:"link"`
}

// createResource takes either a multipart form with a file part or a JSON
// body carrying a link.
func (s *Server) createResource(w http.ResponseWriter, r *http.Request) {
	var in usecase.ResourceInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := s.parseMultipart(w, r); err != nil {
			s.resp.Error(w, r, err)
			return
		}
		in = usecase.ResourceInput{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Category:    r.FormValue("category"),
			Link:        r.FormValue("link"),
		}
		if len(r.MultipartForm.File["file"]) > 0 {
			file, closeFile, err := formFile(r, "file")
			if err != nil {
				s.resp.Error(w, r, err)
				return
			}
			defer closeFile()
			in.File = &file
		}
	} else {
		var req resourceRequest
		if err := decodeJSON(r, &req); err != nil {
			s.resp.Error(w, r, err)
			return
		}
		in = usecase.ResourceInput{Title: req.Title, Description: req.Description, Category: req.Category, Link: req.Link}
	}

	res, err := s.d.Resources.Create(r.Context(), actor(r), in)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"resource": toResource(res)})
}

func (s *Server) deleteResource(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Resources.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type correctRequest struct {
	Text string `json:"text"`
}

func (s *Server) correct(w http.ResponseWriter, r *http.Request) {
	var req correctRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	res, err := s.d.Correction.Correct(r.Context(), actor(r).ID, req.Text)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCorrection(res))
}
