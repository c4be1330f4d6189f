//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/adapter"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/worker"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func i64(v int64) *int64 { return &v }

// =============================
// Transactions and locks
// =============================

// mockTx is the handle passed to repositories inside MockTxManager.WithTx.
// Locks taken through MockUserLocker are released when the transaction ends.
type mockTx struct {
	mu      sync.Mutex
	release []func()
}

func (t *mockTx) onEnd(f func()) {
	t.mu.Lock()
	t.release = append(t.release, f)
	t.mu.Unlock()
}

func (t *mockTx) end() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.release) - 1; i >= 0; i-- {
		t.release[i]()
	}
	t.release = nil
}

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
	mu         sync.Mutex
	Calls      int
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

// WithTx runs fn immediately with a fresh mockTx handle. There is no rollback.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	tx := &mockTx{}
	defer tx.end()
	return fn(ctx, tx)
}

// MockUserLocker holds one mutex per user until the surrounding mockTx ends.
type MockUserLocker struct {
	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	Locked []string
	Err    error
}

var _ repository.UserLocker = (*MockUserLocker)(nil)

func NewMockUserLocker() *MockUserLocker {
	return &MockUserLocker{locks: map[string]*sync.Mutex{}}
}

func (l *MockUserLocker) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	if l.Err != nil {
		return l.Err
	}
	t, ok := tx.(*mockTx)
	if !ok {
		return domain.ErrInvalidExecContext
	}
	l.mu.Lock()
	m := l.locks[userID]
	if m == nil {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.Locked = append(l.Locked, userID)
	l.mu.Unlock()

	m.Lock()
	t.onEnd(m.Unlock)
	return nil
}

// inlineTasks runs submitted tasks synchronously.
type inlineTasks struct{}

func (inlineTasks) Submit(task worker.Task) error { return task(context.Background()) }

// =============================
// Repositories
// =============================

type MockUserRepo struct {
	mu   sync.Mutex
	data map[string]*model.User
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo { return &MockUserRepo{data: map[string]*model.User{}} }

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.data {
		if other.ID != u.ID && other.Email == u.Email {
			return domain.ErrAlreadyExists
		}
	}
	cp := *u
	r.data[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.data[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = model.NormalizeEmail(email)
	for _, u := range r.data {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.User{}
	for _, id := range ids {
		if u, ok := r.data[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockUserRepo) List(ctx context.Context, tx repository.Tx, f repository.UserFilter) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.User{}
	for _, u := range r.data {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.ActiveOnly && !u.IsActive {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MockUserRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.User, error) {
	all, _ := r.List(ctx, tx, repository.UserFilter{})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MockUserRepo) CountByRole(ctx context.Context, tx repository.Tx) (map[model.Role]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.Role]int{}
	for _, u := range r.data {
		out[u.Role]++
	}
	return out, nil
}

// ---- packs ----

type MockPackRepo struct {
	mu   sync.Mutex
	data map[string]*model.Pack
}

var _ repository.PackRepository = (*MockPackRepo)(nil)

func NewMockPackRepo() *MockPackRepo { return &MockPackRepo{data: map[string]*model.Pack{}} }

func (r *MockPackRepo) Save(ctx context.Context, tx repository.Tx, p *model.Pack) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPackRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Pack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPackRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Pack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Pack{}
	for _, p := range r.data {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// ---- subscriptions ----

// MockSubscriptionRepo rejects a second live subscription per user the way
// the partial unique index does.
type MockSubscriptionRepo struct {
	mu   sync.Mutex
	data map[string]*model.Subscription
	seq  map[string]int
	next int

	SaveFunc func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{data: map[string]*model.Subscription{}, seq: map[string]int{}}
}

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.IsLive() {
		for _, o := range r.data {
			if o.ID != s.ID && o.UserID == s.UserID && o.IsLive() {
				return domain.ErrAlreadyExists
			}
		}
	}
	if _, ok := r.seq[s.ID]; !ok {
		r.next++
		r.seq[s.ID] = r.next
	}
	cp := *s
	r.data[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.data[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriptionRepo) FindLatestPayable(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	list, _ := r.ListByUser(ctx, tx, userID)
	for _, s := range list {
		for _, st := range model.PayableSubscriptionStatuses {
			if s.Status == st {
				return s, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// ListByUser returns newest first, by insertion order.
func (r *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	all, _ := r.ListAll(ctx, tx)
	out := []*model.Subscription{}
	for _, s := range all {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Subscription{}
	for _, s := range r.data {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return r.seq[out[i].ID] > r.seq[out[j].ID] })
	return out, nil
}

func (r *MockSubscriptionRepo) DeactivateLive(ctx context.Context, tx repository.Tx, userID, exceptID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.data {
		if s.UserID == userID && s.ID != exceptID && s.IsLive() {
			s.Status = model.SubscriptionStatusDeactivated
			s.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (r *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.SubscriptionStatus]int{}
	for _, s := range r.data {
		out[s.Status]++
	}
	return out, nil
}

// Live returns the user's live subscriptions.
func (r *MockSubscriptionRepo) Live(userID string) []*model.Subscription {
	list, _ := r.ListByUser(context.Background(), repository.NoTX, userID)
	out := []*model.Subscription{}
	for _, s := range list {
		if s.IsLive() {
			out = append(out, s)
		}
	}
	return out
}

// ---- payments ----

type MockPaymentRepo struct {
	mu   sync.Mutex
	rows []*model.Payment
	// Reads counts list calls by method name.
	Reads map[string]int
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo { return &MockPaymentRepo{Reads: map[string]int{}} }

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *MockPaymentRepo) ListBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads["ListBySubscription"]++
	out := []*model.Payment{}
	for _, p := range r.rows {
		if p.SubscriptionID == subscriptionID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPaymentRepo) ListBySubscriptions(ctx context.Context, tx repository.Tx, subscriptionIDs []string) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads["ListBySubscriptions"]++
	want := make(map[string]bool, len(subscriptionIDs))
	for _, id := range subscriptionIDs {
		want[id] = true
	}
	out := []*model.Payment{}
	for _, p := range r.rows {
		if want[p.SubscriptionID] {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPaymentRepo) SumConfirmed(ctx context.Context, tx repository.Tx, subscriptionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.rows {
		if p.SubscriptionID == subscriptionID && p.Status == model.PaymentStatusConfirmed {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (r *MockPaymentRepo) TotalConfirmed(ctx context.Context, tx repository.Tx) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.rows {
		if p.Status == model.PaymentStatusConfirmed {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (r *MockPaymentRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.PaymentStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.rows {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *MockPaymentRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// ---- memoires ----

type MockMemoireRepo struct {
	mu   sync.Mutex
	data map[string]*model.Memoire
}

var _ repository.MemoireRepository = (*MockMemoireRepo)(nil)

func NewMockMemoireRepo() *MockMemoireRepo { return &MockMemoireRepo{data: map[string]*model.Memoire{}} }

func (r *MockMemoireRepo) Save(ctx context.Context, tx repository.Tx, m *model.Memoire) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.data {
		if o.ID != m.ID && o.StudentID == m.StudentID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *m
	r.data[m.ID] = &cp
	return nil
}

func (r *MockMemoireRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Memoire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.data[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockMemoireRepo) FindByStudent(ctx context.Context, tx repository.Tx, studentID string) (*model.Memoire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.data {
		if m.StudentID == studentID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockMemoireRepo) ListByCoach(ctx context.Context, tx repository.Tx, coachID string) ([]*model.Memoire, error) {
	all, _ := r.ListAll(ctx, tx)
	out := []*model.Memoire{}
	for _, m := range all {
		if m.CoachID != nil && *m.CoachID == coachID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MockMemoireRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Memoire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Memoire{}
	for _, m := range r.data {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- documents and resources ----

type MockDocumentRepo struct {
	mu   sync.Mutex
	rows []*model.Document
}

var _ repository.DocumentRepository = (*MockDocumentRepo)(nil)

func NewMockDocumentRepo() *MockDocumentRepo { return &MockDocumentRepo{} }

func (r *MockDocumentRepo) Save(ctx context.Context, tx repository.Tx, d *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	for i, o := range r.rows {
		if o.ID == d.ID {
			r.rows[i] = &cp
			return nil
		}
	}
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *MockDocumentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.rows {
		if d.ID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockDocumentRepo) ListByMemoires(ctx context.Context, tx repository.Tx, memoireIDs []string) ([]*model.Document, error) {
	want := map[string]bool{}
	for _, id := range memoireIDs {
		want[id] = true
	}
	all, _ := r.ListAll(ctx, tx)
	out := []*model.Document{}
	for _, d := range all {
		if want[d.MemoireID] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *MockDocumentRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Document, 0, len(r.rows))
	for i := len(r.rows) - 1; i >= 0; i-- {
		cp := *r.rows[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockDocumentRepo) LastVersion(ctx context.Context, tx repository.Tx, memoireID, category string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := 0
	for _, d := range r.rows {
		if d.MemoireID == memoireID && d.Category == category && d.Version > v {
			v = d.Version
		}
	}
	return v, nil
}

type MockResourceRepo struct {
	mu   sync.Mutex
	data map[string]*model.Resource
}

var _ repository.ResourceRepository = (*MockResourceRepo)(nil)

func NewMockResourceRepo() *MockResourceRepo { return &MockResourceRepo{data: map[string]*model.Resource{}} }

func (r *MockResourceRepo) Save(ctx context.Context, tx repository.Tx, res *model.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *res
	r.data[res.ID] = &cp
	return nil
}

func (r *MockResourceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.data[id]; ok {
		cp := *res
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockResourceRepo) List(ctx context.Context, tx repository.Tx, category string) ([]*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Resource{}
	for _, res := range r.data {
		if category == "" || res.Category == category {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockResourceRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// ---- messaging ----

type MockConversationRepo struct {
	mu   sync.Mutex
	data map[string]*model.Conversation
}

var _ repository.ConversationRepository = (*MockConversationRepo)(nil)

func NewMockConversationRepo() *MockConversationRepo {
	return &MockConversationRepo{data: map[string]*model.Conversation{}}
}

func (r *MockConversationRepo) Save(ctx context.Context, tx repository.Tx, c *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.data[c.ID] = &cp
	return nil
}

func (r *MockConversationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.data[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockConversationRepo) FindByPair(ctx context.Context, tx repository.Tx, a, b string) (*model.Conversation, error) {
	pa, pb := model.OrderedPair(a, b)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.data {
		if c.ParticipantA == pa && c.ParticipantB == pb {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockConversationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Conversation{}
	for _, c := range r.data {
		if c.Has(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out, nil
}

func (r *MockConversationRepo) Touch(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.LastMessageAt = at
	return nil
}

type MockMessageRepo struct {
	mu   sync.Mutex
	rows []*model.Message
}

var _ repository.MessageRepository = (*MockMessageRepo)(nil)

func NewMockMessageRepo() *MockMessageRepo { return &MockMessageRepo{} }

func (r *MockMessageRepo) Save(ctx context.Context, tx repository.Tx, m *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *MockMessageRepo) ListByConversation(ctx context.Context, tx repository.Tx, conversationID string) ([]*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Message{}
	for _, m := range r.rows {
		if m.ConversationID == conversationID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockMessageRepo) Last(ctx context.Context, tx repository.Tx, conversationID string) (*model.Message, error) {
	list, _ := r.ListByConversation(ctx, tx, conversationID)
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	return list[len(list)-1], nil
}

func (r *MockMessageRepo) MarkRead(ctx context.Context, tx repository.Tx, conversationID, readerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.rows {
		if m.ConversationID == conversationID && m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *MockMessageRepo) CountUnread(ctx context.Context, tx repository.Tx, conversationID, readerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.rows {
		if m.ConversationID == conversationID && m.SenderID != readerID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

type MockNotificationRepo struct {
	mu   sync.Mutex
	rows []*model.Notification
}

var _ repository.NotificationRepository = (*MockNotificationRepo)(nil)

func NewMockNotificationRepo() *MockNotificationRepo { return &MockNotificationRepo{} }

func (r *MockNotificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *MockNotificationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Notification{}
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].UserID == userID {
			cp := *r.rows[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockNotificationRepo) MarkRead(ctx context.Context, tx repository.Tx, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *MockNotificationRepo) MarkAllRead(ctx context.Context, tx repository.Tx, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c int64
	for _, n := range r.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			c++
		}
	}
	return c, nil
}

func (r *MockNotificationRepo) CountUnread(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := 0
	for _, n := range r.rows {
		if n.UserID == userID && !n.IsRead {
			c++
		}
	}
	return c, nil
}

// ---- calendar and activity ----

type MockEventRepo struct {
	mu   sync.Mutex
	data map[string]*model.Event
}

var _ repository.EventRepository = (*MockEventRepo)(nil)

func NewMockEventRepo() *MockEventRepo { return &MockEventRepo{data: map[string]*model.Event{}} }

func (r *MockEventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.data[e.ID] = &cp
	return nil
}

func (r *MockEventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.data[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockEventRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Event{}
	for _, e := range r.data {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *MockEventRepo) ListUpcoming(ctx context.Context, tx repository.Tx, userID string, from time.Time, limit int) ([]*model.Event, error) {
	all, _ := r.ListByUser(ctx, tx, userID)
	out := []*model.Event{}
	for _, e := range all {
		if !e.StartsAt.Before(from) && !e.IsDone && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *MockEventRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

type MockActivityLogRepo struct {
	mu   sync.Mutex
	rows []*model.ActivityLog
	Err  error
}

var _ repository.ActivityLogRepository = (*MockActivityLogRepo)(nil)

func NewMockActivityLogRepo() *MockActivityLogRepo { return &MockActivityLogRepo{} }

func (r *MockActivityLogRepo) Save(ctx context.Context, tx repository.Tx, l *model.ActivityLog) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *MockActivityLogRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.ActivityLog, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.ActivityLog{}
	for i := len(r.rows) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		cp := *r.rows[i]
		out = append(out, &cp)
	}
	return out, len(r.rows), nil
}

func (r *MockActivityLogRepo) Actions() []model.ActivityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ActivityAction, 0, len(r.rows))
	for _, l := range r.rows {
		out = append(out, l.Action)
	}
	return out
}

// =============================
// Adapters
// =============================

type MockHasher struct{}

var _ adapter.PasswordHasher = MockHasher{}

func (MockHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (MockHasher) Compare(hash, plain string) error {
	if hash != "hashed:"+plain {
		return domain.ErrUnauthorized
	}
	return nil
}

type MockTokens struct{}

var _ adapter.TokenIssuer = MockTokens{}

func (MockTokens) Issue(u *model.User) (*adapter.TokenPair, error) {
	return &adapter.TokenPair{AccessToken: "access-" + u.ID, RefreshToken: "refresh-" + u.ID}, nil
}

func (MockTokens) ParseRefresh(token string) (string, error) {
	id, ok := strings.CutPrefix(token, "refresh-")
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return id, nil
}

type MockRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	Err    error
}

var _ adapter.RateLimiter = (*MockRateLimiter)(nil)

func NewMockRateLimiter() *MockRateLimiter { return &MockRateLimiter{counts: map[string]int{}} }

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key] <= limit, nil
}

func (m *MockRateLimiter) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, key)
	return nil
}

// MockCipher reverses the text behind a prefix so tests can tell sealed
// content from plain content.
type MockCipher struct{}

var _ adapter.Cipher = MockCipher{}

func (MockCipher) Encrypt(p string) (string, error) { return "enc:" + reverse(p), nil }

func (MockCipher) Decrypt(c string) (string, error) {
	body, ok := strings.CutPrefix(c, "enc:")
	if !ok {
		return "", errors.New("not sealed")
	}
	return reverse(body), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

type MockStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
	PutErr  error
}

var _ adapter.ObjectStorage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage { return &MockStorage{Objects: map[string][]byte{}} }

func (s *MockStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*adapter.StoredObject, error) {
	if s.PutErr != nil {
		return nil, s.PutErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = b
	return &adapter.StoredObject{Key: key, URL: "https://files.test/" + key, Size: int64(len(b))}, nil
}

func (s *MockStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	s.Deleted = append(s.Deleted, key)
	return nil
}

type MockAI struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	Messages [][]adapter.Message
	Opts     []adapter.ChatOptions
}

var _ adapter.AIServiceAdapter = (*MockAI)(nil)

func (m *MockAI) Name() string { return "mock" }

func (m *MockAI) Chat(ctx context.Context, model string, messages []adapter.Message, opts adapter.ChatOptions) (string, adapter.Usage, error) {
	m.mu.Lock()
	m.Messages = append(m.Messages, messages)
	m.Opts = append(m.Opts, opts)
	m.mu.Unlock()
	if m.Err != nil {
		return "", adapter.Usage{}, m.Err
	}
	return m.Reply, adapter.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, nil
}

// wordCounter counts one token per word.
type wordCounter struct{}

func (wordCounter) Count(model, text string) (int, error) { return len(strings.Fields(text)), nil }

type MockRenderer struct {
	Last        *adapter.MemoireReport
	LastContent *adapter.ContentDocument
}

var _ adapter.PDFRenderer = (*MockRenderer)(nil)

func (r *MockRenderer) RenderMemoire(w io.Writer, rep *adapter.MemoireReport) error {
	r.Last = rep
	_, err := fmt.Fprintf(w, "%%PDF-mock %s", rep.Title)
	return err
}

func (r *MockRenderer) RenderContent(w io.Writer, d *adapter.ContentDocument) error {
	r.LastContent = d
	_, err := fmt.Fprintf(w, "%%PDF-mock %s", d.Title)
	return err
}

// =============================
// Fixtures
// =============================

func seedUser(users *MockUserRepo, id string, role model.Role) *model.User {
	u, err := model.NewUser(id, id+"@example.com", "First"+id, "Last"+id, role)
	if err != nil {
		panic(err)
	}
	u.PasswordHash = "hashed:secret1"
	if err := users.Save(context.Background(), repository.NoTX, u); err != nil {
		panic(err)
	}
	return u
}

func seedPack(packs *MockPackRepo, id string, price int64, inst1, inst2 *int64) *model.Pack {
	p, err := model.NewPack(id, "Pack "+id, "", price, inst1, inst2, nil, 0)
	if err != nil {
		panic(err)
	}
	if err := packs.Save(context.Background(), repository.NoTX, p); err != nil {
		panic(err)
	}
	return p
}

func seedMemoire(memoires *MockMemoireRepo, student *model.User, coachID string) *model.Memoire {
	m, err := model.NewMemoireFor("mem-"+student.ID, student)
	if err != nil {
		panic(err)
	}
	if coachID != "" {
		m.CoachID = &coachID
	}
	if err := memoires.Save(context.Background(), repository.NoTX, m); err != nil {
		panic(err)
	}
	return m
}
