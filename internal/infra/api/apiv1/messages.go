package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) partners(w http.ResponseWriter, r *http.Request) {
	list, err := s.d.Messaging.Partners(r.Context(), actor(r))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"partners": list})
}

func (s *Server) conversations(w http.ResponseWriter, r *http.Request) {
	list, err := s.d.Messaging.Conversations(r.Context(), actor(r))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": mapSlice(list, toConversation)})
}

// conversation returns the thread oldest first and marks it read.
func (s *Server) conversation(w http.ResponseWriter, r *http.Request) {
	th, err := s.d.Messaging.Messages(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversationId": th.Conversation.ID,
		"partner":        th.Partner,
		"messages":       mapSlice(th.Messages, toMessage),
	})
}

type sendMessageRequest struct {
	RecipientID string `json:"recipientId"`
	ReceiverID  string `json:"receiverId"`
	Content     string `json:"content"`
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	if req.RecipientID == "" {
		req.RecipientID = req.ReceiverID
	}
	msg, err := s.d.Messaging.Send(r.Context(), actor(r), req.RecipientID, req.Content)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": toMessage(msg)})
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.d.Notifications.List(r.Context(), actor(r).ID)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": mapSlice(list, toNotification)})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Notifications.MarkRead(r.Context(), actor(r).ID, chi.URLParam(r, "id")); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.d.Notifications.MarkAllRead(r.Context(), actor(r).ID)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": n})
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.d.Notifications.UnreadCount(r.Context(), actor(r).ID)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": n})
}
