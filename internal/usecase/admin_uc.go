package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/logging"
)

const (
	recentUsersLimit    = 5
	recentActivityLimit = 10
	defaultLogPageSize  = 20
	maxLogPageSize      = 100
)

// AdminStats is the dashboard summary.
type AdminStats struct {
	TotalUsers            int
	UsersByRole           map[model.Role]int
	SubscriptionsByStatus map[model.SubscriptionStatus]int
	Revenue               int64
	PendingPayments       int
	RecentUsers           []*model.UserSummary
	RecentActivity        []*model.ActivityLogView
}

// LogPage is one page of the activity journal. Page is 1-based.
type LogPage struct {
	Logs  []*model.ActivityLogView
	Total int
	Page  int
	Limit int
	Pages int
}

type AdminUseCase interface {
	Stats(ctx context.Context) (*AdminStats, error)
	Logs(ctx context.Context, page, limit int) (*LogPage, error)
	Subscriptions(ctx context.Context) ([]*model.SubscriptionView, error)
}

var _ AdminUseCase = (*adminUC)(nil)

type adminUC struct {
	users    repository.UserRepository
	subRepo  repository.SubscriptionRepository
	payments repository.PaymentRepository
	logs     repository.ActivityLogRepository
	subs     SubscriptionUseCase
	log      *zerolog.Logger
}

func NewAdminUseCase(
	users repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	payments repository.PaymentRepository,
	logs repository.ActivityLogRepository,
	subs SubscriptionUseCase,
	logger *zerolog.Logger,
) AdminUseCase {
	return &adminUC{
		users:    users,
		subRepo:  subRepo,
		payments: payments,
		logs:     logs,
		subs:     subs,
		log:      logging.Component(loggerOrNop(logger), "AdminUseCase"),
	}
}

func (a *adminUC) Stats(ctx context.Context) (*AdminStats, error) {
	byRole, err := a.users.CountByRole(ctx, repository.NoTX)
	if err != nil {
		return nil, logFailure(ctx, a.log, "stats_users", err)
	}
	byStatus, err := a.subRepo.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return nil, logFailure(ctx, a.log, "stats_subscriptions", err)
	}
	revenue, err := a.payments.TotalConfirmed(ctx, repository.NoTX)
	if err != nil {
		return nil, logFailure(ctx, a.log, "stats_revenue", err)
	}
	pending, err := a.payments.CountByStatus(ctx, repository.NoTX, model.PaymentStatusPending)
	if err != nil {
		return nil, logFailure(ctx, a.log, "stats_pending", err)
	}
	recent, err := a.users.ListRecent(ctx, repository.NoTX, recentUsersLimit)
	if err != nil {
		return nil, logFailure(ctx, a.log, "stats_recent_users", err)
	}
	activity, err := a.Logs(ctx, 1, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	st := &AdminStats{
		UsersByRole:           byRole,
		SubscriptionsByStatus: byStatus,
		Revenue:               revenue,
		PendingPayments:       pending,
		RecentUsers:           make([]*model.UserSummary, 0, len(recent)),
		RecentActivity:        activity.Logs,
	}
	for _, n := range byRole {
		st.TotalUsers += n
	}
	for _, u := range recent {
		st.RecentUsers = append(st.RecentUsers, u.Summary())
	}
	return st, nil
}

func (a *adminUC) Logs(ctx context.Context, page, limit int) (*LogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLogPageSize
	}
	if limit > maxLogPageSize {
		limit = maxLogPageSize
	}

	rows, total, err := a.logs.List(ctx, repository.NoTX, (page-1)*limit, limit)
	if err != nil {
		return nil, logFailure(ctx, a.log, "activity_logs", err)
	}

	ids := make([]string, 0, len(rows))
	for _, l := range rows {
		if l.UserID != nil {
			ids = append(ids, *l.UserID)
		}
	}
	users, err := a.users.FindByIDs(ctx, repository.NoTX, uniq(ids))
	if err != nil {
		return nil, logFailure(ctx, a.log, "activity_log_users", err)
	}
	byID := make(map[string]*model.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}

	out := &LogPage{Logs: make([]*model.ActivityLogView, 0, len(rows)), Total: total, Page: page, Limit: limit}
	out.Pages = (total + limit - 1) / limit
	for _, l := range rows {
		v := &model.ActivityLogView{ActivityLog: l}
		if l.UserID != nil {
			v.User = byID[*l.UserID]
		}
		out.Logs = append(out.Logs, v)
	}
	return out, nil
}

func (a *adminUC) Subscriptions(ctx context.Context) ([]*model.SubscriptionView, error) {
	return a.subs.ListAll(ctx)
}
