//go:build !integration

package apiv1_test

import (
	"context"
	"io"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/adapter"
	apiv1 "cledumemoire/internal/infra/api/apiv1"
	"cledumemoire/internal/infra/i18n"
	"cledumemoire/internal/usecase"
)

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// fakeVerifier accepts the tokens "student", "coach" and "admin"; the user
// id is the token followed by "-id".
type fakeVerifier struct{}

func (fakeVerifier) VerifyAccess(token string) (string, model.Role, error) {
	switch token {
	case "student":
		return "student-id", model.RoleStudent, nil
	case "coach":
		return "coach-id", model.RoleAccompagnateur, nil
	case "admin":
		return "admin-id", model.RoleAdmin, nil
	}
	return "", "", domain.ErrUnauthorized
}

func newRouter(d apiv1.Deps) *chi.Mux {
	bundle, err := i18n.NewBundle(i18n.LocalesFS, "fr", "en")
	if err != nil {
		panic(err)
	}
	if d.Tokens == nil {
		d.Tokens = fakeVerifier{}
	}
	srv := apiv1.NewServer(d, apiv1.NewResponder(bundle, newLogger()), newLogger())
	r := chi.NewRouter()
	srv.RegisterRoutes(r)
	return r
}

//
// ---------------- use case fakes ----------------
//

type fakeSubscriptions struct {
	err       error
	calls     []string
	lastInput usecase.NotifyPaymentInput
	lastAmt   int64
}

func view(id, userID string, status model.SubscriptionStatus, paid int64) *model.SubscriptionView {
	now := time.Now()
	return &model.SubscriptionView{
		Subscription: &model.Subscription{ID: id, UserID: userID, PackID: "p1", Status: status, AmountPaid: paid, CreatedAt: now, UpdatedAt: now},
		Pack:         &model.Pack{ID: "p1", Name: "Essentiel", Price: 50000, IsActive: true},
	}
}

func (f *fakeSubscriptions) Subscribe(_ context.Context, userID, packID string) (*model.SubscriptionView, error) {
	f.calls = append(f.calls, "subscribe:"+userID+":"+packID)
	if f.err != nil {
		return nil, f.err
	}
	return view("s1", userID, model.SubscriptionStatusPending, 0), nil
}

func (f *fakeSubscriptions) NotifyPayment(_ context.Context, userID string, in usecase.NotifyPaymentInput) (*model.Payment, error) {
	f.calls = append(f.calls, "notify:"+userID)
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Payment{ID: "pay1", SubscriptionID: "s1", Amount: in.Amount, Status: model.PaymentStatusPending}, nil
}

func (f *fakeSubscriptions) RecordConfirmedPayment(_ context.Context, subscriptionID string, amount int64) (*model.SubscriptionView, error) {
	f.calls = append(f.calls, "record:"+subscriptionID)
	f.lastAmt = amount
	if f.err != nil {
		return nil, f.err
	}
	return view(subscriptionID, "u1", model.SubscriptionStatusPartial, amount), nil
}

func (f *fakeSubscriptions) AdminActivate(_ context.Context, subscriptionID string) (*model.SubscriptionView, error) {
	f.calls = append(f.calls, "activate:"+subscriptionID)
	if f.err != nil {
		return nil, f.err
	}
	return view(subscriptionID, "u1", model.SubscriptionStatusActive, 0), nil
}

func (f *fakeSubscriptions) MySubscriptions(_ context.Context, userID string) ([]*model.SubscriptionView, error) {
	f.calls = append(f.calls, "mine:"+userID)
	if f.err != nil {
		return nil, f.err
	}
	v := view("s1", userID, model.SubscriptionStatusPartial, 75000)
	v.Payments = []*model.Payment{{ID: "pay1", SubscriptionID: "s1", Amount: 75000, Method: "ADMIN", Status: model.PaymentStatusConfirmed}}
	return []*model.SubscriptionView{v}, nil
}

func (f *fakeSubscriptions) ListAll(context.Context) ([]*model.SubscriptionView, error) {
	return nil, f.err
}

type fakeAuth struct {
	err error
	ip  string
}

func (f *fakeAuth) result() *usecase.AuthResult {
	return &usecase.AuthResult{
		User:   &model.User{ID: "u1", Email: "awa@example.com", FirstName: "Awa", LastName: "Diop", Role: model.RoleStudent, IsActive: true},
		Tokens: &adapter.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
	}
}

func (f *fakeAuth) Register(_ context.Context, in usecase.RegisterInput) (*usecase.AuthResult, error) {
	f.ip = in.IP
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeAuth) Login(_ context.Context, _, _, ip string) (*usecase.AuthResult, error) {
	f.ip = ip
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeAuth) Refresh(context.Context, string) (*usecase.AuthResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result(), nil
}

func (f *fakeAuth) Me(context.Context, string) (*model.User, error) {
	return f.result().User, f.err
}

func (f *fakeAuth) ChangePassword(context.Context, string, string, string) error { return f.err }

type fakeDocuments struct {
	got      usecase.FileUpload
	body     string
	category string
	memoire  string
}

func (f *fakeDocuments) List(context.Context, usecase.Actor) ([]*model.Document, error) {
	return []*model.Document{}, nil
}

func (f *fakeDocuments) Upload(_ context.Context, actor usecase.Actor, file usecase.FileUpload, category, memoireID string) (*model.Document, error) {
	b, _ := io.ReadAll(file.Body)
	f.got, f.body, f.category, f.memoire = file, string(b), category, memoireID
	return &model.Document{ID: "d1", UploaderID: actor.ID, Name: file.Name, Category: "PLAN", Version: 1, Status: model.DocumentStatusPending}, nil
}

func (f *fakeDocuments) Review(context.Context, usecase.Actor, string, string, string) (*model.Document, error) {
	return nil, domain.ErrForbidden
}

type fakeExport struct{ err error }

func (f fakeExport) MemoirePDF(_ context.Context, _ usecase.Actor, memoireID string, w io.Writer) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.WriteString(w, "%PDF-1.3 fake")
	return "memoire-" + memoireID + ".pdf", nil
}

func (f fakeExport) ContentPDF(_ context.Context, userID string, in usecase.ExportContentInput, w io.Writer) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.WriteString(w, "%PDF-1.3 "+in.Title)
	return "Memoire_" + userID + ".pdf", nil
}

// fakeUsers records the calls the route tests look at; the other methods
// are left to the embedded nil interface.
type fakeUsers struct {
	usecase.UserUseCase
	calls []string
}

func (f *fakeUsers) UpdateProfile(_ context.Context, userID string, p usecase.ProfilePatch) (*model.User, error) {
	f.calls = append(f.calls, "profile:"+userID)
	u := &model.User{ID: userID, Role: model.RoleStudent}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	return u, nil
}

func (f *fakeUsers) AssignCoach(_ context.Context, studentID, coachID string) (*model.MemoireView, error) {
	f.calls = append(f.calls, "assign:"+studentID+":"+coachID)
	return &model.MemoireView{Memoire: &model.Memoire{ID: "m1", StudentID: studentID, CoachID: &coachID}}, nil
}

type fakeMessaging struct {
	usecase.MessagingUseCase
	calls []string
}

func (f *fakeMessaging) Messages(_ context.Context, a usecase.Actor, conversationID string) (*usecase.ConversationThread, error) {
	f.calls = append(f.calls, "messages:"+conversationID)
	return &usecase.ConversationThread{Conversation: &model.Conversation{ID: conversationID}, Messages: []*model.Message{}}, nil
}

func (f *fakeMessaging) Send(_ context.Context, a usecase.Actor, recipientID, content string) (*model.Message, error) {
	f.calls = append(f.calls, "send:"+recipientID)
	return &model.Message{ID: "msg1", SenderID: a.ID, Content: content}, nil
}

type fakeCorrection struct{}

func (fakeCorrection) Correct(_ context.Context, _ string, text string) (*usecase.CorrectionResult, error) {
	if len(text) > 20 {
		return nil, domain.ErrTextTooLong
	}
	return &usecase.CorrectionResult{Original: text, Corrected: text + ".", InputTokens: 2, Usage: adapter.Usage{TotalTokens: 9}}, nil
}
