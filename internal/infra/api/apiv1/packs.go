package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/usecase"
)

func (s *Server) listPacks(w http.ResponseWriter, r *http.Request) {
	packs, err := s.d.Packs.ListActive(r.Context())
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"packs": mapSlice(packs, toPack)})
}

type subscribeRequest struct {
	PackID string `json:"packId"`
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	if req.PackID == "" {
		s.resp.Error(w, r, domain.ErrInvalidArgument)
		return
	}
	sub, err := s.d.Subscriptions.Subscribe(r.Context(), actor(r).ID, req.PackID)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"subscription": toSubscription(sub)})
}

func (s *Server) mySubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.d.Subscriptions.MySubscriptions(r.Context(), actor(r).ID)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": toSubscriptions(subs)})
}

type notifyPaymentRequest struct {
	Method    string `json:"method"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
}

func (s *Server) notifyPayment(w http.ResponseWriter, r *http.Request) {
	var req notifyPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	_, err := s.d.Subscriptions.NotifyPayment(r.Context(), actor(r).ID, usecase.NotifyPaymentInput{
		Method:    req.Method,
		Reference: req.Reference,
		Amount:    req.Amount,
	})
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	s.resp.Message(w, r, http.StatusOK, "payment.notified")
}

type recordPaymentRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	sub, err := s.d.Subscriptions.RecordConfirmedPayment(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscription": toSubscription(sub)})
}

// activate takes the subscription id in the path.
func (s *Server) activate(w http.ResponseWriter, r *http.Request) {
	sub, err := s.d.Subscriptions.AdminActivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscription": toSubscription(sub)})
}

type packRequest struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        int64    `json:"price"`
	Installment1 *int64   `json:"installment1"`
	Installment2 *int64   `json:"installment2"`
	Features     []string `json:"features"`
	SortOrder    int      `json:"order"`
}

func (s *Server) createPack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	p, err := s.d.Packs.Create(r.Context(), usecase.PackInput{
		ID:           req.ID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Installment1: req.Installment1,
		Installment2: req.Installment2,
		Features:     req.Features,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"pack": toPack(p)})
}

type packPatchRequest struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Price        *int64    `json:"price"`
	Installment1 *int64    `json:"installment1"`
	Installment2 *int64    `json:"installment2"`
	// clears both installments when none is given
	ClearInstallments bool      `json:"clearInstallments"`
	Features          *[]string `json:"features"`
	IsActive          *bool     `json:"isActive"`
	SortOrder         *int      `json:"order"`
}

func (s *Server) updatePack(w http.ResponseWriter, r *http.Request) {
	var req packPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.resp.Error(w, r, err)
		return
	}
	p, err := s.d.Packs.Update(r.Context(), chi.URLParam(r, "id"), usecase.PackPatch{
		Name:                req.Name,
		Description:         req.Description,
		Price:               req.Price,
		ReplaceInstallments: req.ClearInstallments || req.Installment1 != nil || req.Installment2 != nil,
		Installment1:        req.Installment1,
		Installment2:        req.Installment2,
		Features:            req.Features,
		IsActive:            req.IsActive,
		SortOrder:           req.SortOrder,
	})
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pack": toPack(p)})
}
