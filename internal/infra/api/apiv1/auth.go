package apiv1

import (
	"net/http"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/usecase"
)

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	PackID     string `json:"packId"`
	University string `json:"university"`
	Field      string `json:"field"`
	Level      string `json:"level"`
}

func (req registerRequest) validate() error {
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return domain.ErrInvalidArgument
	}
	return nil
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	res, err := s.d.Auth.Register(r.Context(), usecase.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Role:       req.Role,
		PackID:     req.PackID,
		University: req.University,
		Field:      req.Field,
		Level:      req.Level,
		IP:         ClientIP(r),
	})
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuth(res))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		s.resp.Error(w, r, domain.ErrInvalidArgument)
		return
	}
	res, err := s.d.Auth.Login(r.Context(), req.Email, req.Password, ClientIP(r))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuth(res))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	if req.RefreshToken == "" {
		s.resp.Error(w, r, domain.ErrInvalidArgument)
		return
	}
	res, err := s.d.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuth(res))
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.d.Auth.Me(r.Context(), actor(r).ID)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUser(u)})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	if err := s.d.Auth.ChangePassword(r.Context(), actor(r).ID, req.CurrentPassword, req.NewPassword); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
