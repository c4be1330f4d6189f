package apiv1

import (
	"net/http"
	"strconv"

	"cledumemoire/internal/domain/model"
)

type statsResponse struct {
	TotalUsers            int                              `json:"totalUsers"`
	UsersByRole           map[model.Role]int               `json:"usersByRole"`
	SubscriptionsByStatus map[model.SubscriptionStatus]int `json:"subscriptionsByStatus"`
	Revenue               int64                            `json:"revenue"`
	PendingPayments       int                              `json:"pendingPayments"`
}

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.d.Admin.Stats(r.Context())
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": statsResponse{
			TotalUsers:            st.TotalUsers,
			UsersByRole:           st.UsersByRole,
			SubscriptionsByStatus: st.SubscriptionsByStatus,
			Revenue:               st.Revenue,
			PendingPayments:       st.PendingPayments,
		},
		"recentUsers":    st.RecentUsers,
		"recentActivity": toActivityLogs(st.RecentActivity),
	})
}

// adminLogs reads ?page= and ?limit=; bad numbers fall back to the defaults.
func (s *Server) adminLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := s.d.Admin.Logs(r.Context(), page, limit)
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"logs":       toActivityLogs(res.Logs),
		"total":      res.Total,
		"page":       res.Page,
		"limit":      res.Limit,
		"totalPages": res.Pages,
	})
}

func (s *Server) adminSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.d.Admin.Subscriptions(r.Context())
	if err != nil {
		s.resp.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": toSubscriptions(subs)})
}
