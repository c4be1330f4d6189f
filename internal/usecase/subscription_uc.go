package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/logging"
	"cledumemoire/internal/infra/metrics"
)

// NotifyPaymentInput is a payment reported by the student.
type NotifyPaymentInput struct {
	Method    string
	Reference string
	Amount    int64
}

// SubscriptionUseCase is the subscription lifecycle engine.
//
// Every mutating operation runs in one transaction holding the per-user
// advisory lock, so at most one subscription of a user is live at any time
// and concurrent confirmations cannot lose an update.
type SubscriptionUseCase interface {
	// Subscribe supersedes every live subscription of the user with a new
	// PENDING one on packID.
	Subscribe(ctx context.Context, userID, packID string) (*model.SubscriptionView, error)

	// NotifyPayment appends a PENDING payment to the user's latest payable
	// subscription and applies the provisional installment rule.
	NotifyPayment(ctx context.Context, userID string, in NotifyPaymentInput) (*model.Payment, error)

	// RecordConfirmedPayment appends a CONFIRMED payment and recomputes the
	// subscription status from the confirmed ledger total.
	RecordConfirmedPayment(ctx context.Context, subscriptionID string, amount int64) (*model.SubscriptionView, error)

	// AdminActivate forces ACTIVE without touching the amount paid.
	AdminActivate(ctx context.Context, subscriptionID string) (*model.SubscriptionView, error)

	MySubscriptions(ctx context.Context, userID string) ([]*model.SubscriptionView, error)
	ListAll(ctx context.Context) ([]*model.SubscriptionView, error)
}

var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type subscriptionUC struct {
	subs     repository.SubscriptionRepository
	packs    repository.PackRepository
	payments repository.PaymentRepository
	users    repository.UserRepository
	locker   repository.UserLocker
	tx       repository.TransactionManager
	notifier Notifier
	activity ActivityRecorder
	log      *zerolog.Logger
	now      func() time.Time
}

func NewSubscriptionUseCase(
	subs repository.SubscriptionRepository,
	packs repository.PackRepository,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	locker repository.UserLocker,
	tx repository.TransactionManager,
	notifier Notifier,
	activity ActivityRecorder,
	logger *zerolog.Logger,
) SubscriptionUseCase {
	return &subscriptionUC{
		subs:     subs,
		packs:    packs,
		payments: payments,
		users:    users,
		locker:   locker,
		tx:       tx,
		notifier: notifierOrNop(notifier),
		activity: recorderOrNop(activity),
		log:      logging.Component(loggerOrNop(logger), "SubscriptionUseCase"),
		now:      time.Now,
	}
}

func (s *subscriptionUC) Subscribe(ctx context.Context, userID, packID string) (*model.SubscriptionView, error) {
	packID = strings.TrimSpace(packID)
	if userID == "" || packID == "" {
		return nil, domain.ErrInvalidArgument
	}

	var (
		out        *model.SubscriptionView
		superseded int64
	)
	err := s.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := s.locker.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		pack, err := s.activePack(ctx, tx, packID)
		if err != nil {
			return err
		}
		if superseded, err = s.subs.DeactivateLive(ctx, tx, userID, ""); err != nil {
			return err
		}
		sub, err := model.NewSubscription(uuid.NewString(), userID, pack)
		if err != nil {
			return err
		}
		if err := s.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		out = &model.SubscriptionView{Subscription: sub, Pack: pack, Payments: []*model.Payment{}}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "subscribe", err)
	}

	metrics.AddSubscriptionsDeactivated(superseded)
	s.activity.Record(ctx, userID, model.ActivitySubscribe, "pack="+out.Pack.Name, "")
	return out, nil
}

func (s *subscriptionUC) NotifyPayment(ctx context.Context, userID string, in NotifyPaymentInput) (*model.Payment, error) {
	in.Method = strings.TrimSpace(in.Method)
	if userID == "" || in.Amount <= 0 || in.Method == "" {
		return nil, domain.ErrInvalidArgument
	}

	var (
		out        *model.Payment
		superseded int64
	)
	err := s.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := s.locker.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		sub, err := s.subs.FindLatestPayable(ctx, tx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNoPayableSubscription
		}
		if err != nil {
			return err
		}
		pack, err := s.packs.FindByID(ctx, tx, sub.PackID)
		if err != nil {
			return err
		}

		var ref *string
		if in.Reference != "" {
			ref = &in.Reference
		}
		pay, err := model.NewPayment(uuid.NewString(), sub.ID, in.Amount, in.Method, ref, model.PaymentStatusPending)
		if err != nil {
			return err
		}
		if err := s.payments.Save(ctx, tx, pay); err != nil {
			return err
		}

		if sub.ApplyClaim(pack, in.Amount, s.now()) {
			if superseded, err = s.subs.DeactivateLive(ctx, tx, userID, sub.ID); err != nil {
				return err
			}
			if err := s.subs.Save(ctx, tx, sub); err != nil {
				return err
			}
		}
		out = pay
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "notify_payment", err)
	}

	metrics.IncPayment(string(model.PaymentStatusPending))
	metrics.AddSubscriptionsDeactivated(superseded)
	s.activity.Record(ctx, userID, model.ActivityPaymentNotified,
		fmt.Sprintf("amount=%d method=%s", in.Amount, in.Method), "")
	return out, nil
}

func (s *subscriptionUC) RecordConfirmedPayment(ctx context.Context, subscriptionID string, amount int64) (view *model.SubscriptionView, err error) {
	defer func() { metrics.IncAdminAction("record_payment", err) }()
	if subscriptionID == "" || amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	var superseded int64
	err = s.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := s.lockSubscription(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		pack, err := s.packs.FindByID(ctx, tx, sub.PackID)
		if err != nil {
			return err
		}
		confirmed, err := s.payments.SumConfirmed(ctx, tx, sub.ID)
		if err != nil {
			return err
		}

		wasActive := sub.Status == model.SubscriptionStatusActive
		if err := sub.ApplyConfirmedTotal(pack, confirmed+amount, s.now()); err != nil {
			return err
		}
		if sub.IsLive() {
			if superseded, err = s.subs.DeactivateLive(ctx, tx, sub.UserID, sub.ID); err != nil {
				return err
			}
		}
		if err := s.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		pay, err := model.NewPayment(uuid.NewString(), sub.ID, amount, model.PaymentMethodManual, nil, model.PaymentStatusConfirmed)
		if err != nil {
			return err
		}
		if err := s.payments.Save(ctx, tx, pay); err != nil {
			return err
		}

		if err := s.notifier.Notify(ctx, tx, Notice{
			UserID: sub.UserID, Type: model.NotificationTypePayment,
			TitleKey: "notification.payment.title", Args: []any{amount}, Link: "/subscriptions",
		}); err != nil {
			return err
		}
		if !wasActive && sub.Status == model.SubscriptionStatusActive {
			if err := s.notifier.Notify(ctx, tx, Notice{
				UserID: sub.UserID, Type: model.NotificationTypeSubscription,
				TitleKey: "notification.subscription.title", Body: pack.Name, Link: "/subscriptions",
			}); err != nil {
				return err
			}
		}

		view, err = s.adminView(ctx, tx, sub, pack)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "record_confirmed_payment", err)
	}

	metrics.IncPayment(string(model.PaymentStatusConfirmed))
	metrics.AddPaymentRevenue(metrics.Currency, amount)
	metrics.AddSubscriptionsDeactivated(superseded)
	s.activity.Record(ctx, logging.UserID(ctx), model.ActivityPaymentConfirmed,
		fmt.Sprintf("subscription=%s amount=%d status=%s", view.ID, amount, view.Status), "")
	return view, nil
}

func (s *subscriptionUC) AdminActivate(ctx context.Context, subscriptionID string) (view *model.SubscriptionView, err error) {
	defer func() { metrics.IncAdminAction("activate", err) }()
	if subscriptionID == "" {
		return nil, domain.ErrInvalidArgument
	}

	var superseded int64
	err = s.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := s.lockSubscription(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		pack, err := s.packs.FindByID(ctx, tx, sub.PackID)
		if err != nil {
			return err
		}
		if superseded, err = s.subs.DeactivateLive(ctx, tx, sub.UserID, sub.ID); err != nil {
			return err
		}
		sub.ForceActivate(s.now())
		if err := s.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		if err := s.notifier.Notify(ctx, tx, Notice{
			UserID: sub.UserID, Type: model.NotificationTypeSubscription,
			TitleKey: "notification.subscription.title", Body: pack.Name, Link: "/subscriptions",
		}); err != nil {
			return err
		}
		view, err = s.adminView(ctx, tx, sub, pack)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "admin_activate", err)
	}

	metrics.AddSubscriptionsDeactivated(superseded)
	s.activity.Record(ctx, logging.UserID(ctx), model.ActivityActivate, "subscription="+view.ID, "")
	return view, nil
}

func (s *subscriptionUC) MySubscriptions(ctx context.Context, userID string) ([]*model.SubscriptionView, error) {
	subs, err := s.subs.ListByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, s.fail(ctx, "my_subscriptions", err)
	}
	return s.views(ctx, subs, false)
}

func (s *subscriptionUC) ListAll(ctx context.Context) ([]*model.SubscriptionView, error) {
	subs, err := s.subs.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, s.fail(ctx, "list_subscriptions", err)
	}
	return s.views(ctx, subs, true)
}

// lockSubscription resolves the owner without locking, takes the owner's
// advisory lock, then re-reads the row under the transaction. Taking the
// advisory lock before any row lock keeps the order identical to Subscribe.
func (s *subscriptionUC) lockSubscription(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	owner, err := s.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if err := s.locker.LockUser(ctx, tx, owner.UserID); err != nil {
		return nil, err
	}
	return s.subs.FindByID(ctx, tx, id)
}

func (s *subscriptionUC) activePack(ctx context.Context, tx repository.Tx, id string) (*model.Pack, error) {
	pack, err := s.packs.FindByID(ctx, tx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrPackUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !pack.IsActive {
		return nil, domain.ErrPackUnavailable
	}
	return pack, nil
}

func (s *subscriptionUC) adminView(ctx context.Context, tx repository.Tx, sub *model.Subscription, pack *model.Pack) (*model.SubscriptionView, error) {
	payments, err := s.payments.ListBySubscription(ctx, tx, sub.ID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, tx, sub.UserID)
	if err != nil {
		return nil, err
	}
	return &model.SubscriptionView{Subscription: sub, Pack: pack, Payments: payments, User: user.Summary()}, nil
}

func (s *subscriptionUC) views(ctx context.Context, subs []*model.Subscription, withUser bool) ([]*model.SubscriptionView, error) {
	packs := map[string]*model.Pack{}
	users := map[string]*model.UserSummary{}

	if withUser {
		ids := make([]string, 0, len(subs))
		for _, sub := range subs {
			ids = append(ids, sub.UserID)
		}
		list, err := s.users.FindByIDs(ctx, repository.NoTX, uniq(ids))
		if err != nil {
			return nil, s.fail(ctx, "subscription_users", err)
		}
		for _, u := range list {
			users[u.ID] = u.Summary()
		}
	}

	subIDs := make([]string, 0, len(subs))
	for _, sub := range subs {
		subIDs = append(subIDs, sub.ID)
	}
	ledger, err := s.payments.ListBySubscriptions(ctx, repository.NoTX, subIDs)
	if err != nil {
		return nil, s.fail(ctx, "subscription_payments", err)
	}
	payments := make(map[string][]*model.Payment, len(subs))
	for _, p := range ledger {
		payments[p.SubscriptionID] = append(payments[p.SubscriptionID], p)
	}

	out := make([]*model.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		pack, ok := packs[sub.PackID]
		if !ok {
			p, err := s.packs.FindByID(ctx, repository.NoTX, sub.PackID)
			if err != nil {
				return nil, s.fail(ctx, "subscription_pack", err)
			}
			packs[sub.PackID], pack = p, p
		}
		list := payments[sub.ID]
		if list == nil {
			list = []*model.Payment{}
		}
		out = append(out, &model.SubscriptionView{Subscription: sub, Pack: pack, Payments: list, User: users[sub.UserID]})
	}
	return out, nil
}

func (s *subscriptionUC) fail(ctx context.Context, op string, err error) error {
	return logFailure(ctx, s.log, op, err)
}
