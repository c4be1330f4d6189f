package apiv1

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/usecase"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	list, err := s.d.Calendar.List(r.Context(), actor(r).ID)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": mapSlice(list, toEvent)})
}

func (s *Server) nextEvents(w http.ResponseWriter, r *http.Request) {
	list, err := s.d.Calendar.Next(r.Context(), actor(r).ID)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	var next *Event
	if len(list) > 0 {
		next = toEvent(list[0])
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": next, "events": mapSlice(list, toEvent)})
}

type eventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	StartsAt    *time.Time `json:"startDate"`
	EndsAt      *time.Time `json:"endDate"`
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	if req.StartsAt == nil {
		s.resp.Error(w, r, domain.ErrInvalidArgument)
		return
	}
	ev, err := s.d.Calendar.Create(r.Context(), actor(r).ID, usecase.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		StartsAt:    *req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"event": toEvent(ev)})
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Calendar.Delete(r.Context(), actor(r).ID, chi.URLParam(r, "id")); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.d.Calendar.Toggle(r.Context(), actor(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": toEvent(ev)})
}
