package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cledumemoire/internal/usecase"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.d.Users.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": toUsers(users)})
}

func (s *Server) myProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.d.Users.Get(r.Context(), actor(r).ID)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUser(u)})
}

type profileRequest struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Phone      *string `json:"phone"`
	University *string `json:"university"`
	Field      *string `json:"field"`
	Level      *string `json:"level"`
}

func (s *Server) updateMyProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	u, err := s.d.Users.UpdateProfile(r.Context(), actor(r).ID, usecase.ProfilePatch(req))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUser(u)})
}

func (s *Server) updateAvatar(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	file, closeFile, err := formFile(r, "avatar")
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	defer closeFile()

	u, err := s.d.Users.UpdateAvatar(r.Context(), actor(r).ID, file)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUser(u)})
}

type adminUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req adminUserRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	u, err := s.d.Users.Update(r.Context(), chi.URLParam(r, "id"), usecase.AdminUserPatch(req))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUser(u)})
}

type assignCoachRequest struct {
	StudentID string `json:"studentId"`
	CoachID   string `json:"accompagnateurId"`
	AltCoach  string `json:"coachId"`
}

// assignCoach takes the student from the path on /users/{id}/assign-coach
// and from the body on /users/assign-coach.

func (s *Server) assignCoach(w http.ResponseWriter, r *http.Request) {
	var req assignCoachRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		req.StudentID = id
	}
	if req.CoachID == "" {
		req.CoachID = req.AltCoach
	}
	mem, err := s.d.Users.AssignCoach(r.Context(), req.StudentID, req.CoachID)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"memoire": toMemoire(mem)})
}
