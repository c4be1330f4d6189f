//go:build !integration

package apiv1_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	apiv1 "cledumemoire/internal/infra/api/apiv1"
)

func do(h http.Handler, method, path, token, body string, hdr ...string) *httptest.ResponseRecorder {
	var rdr *bytes.Buffer
	if body != "" {
		rdr = bytes.NewBufferString(body)
	} else {
		rdr = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body.Error
}

func TestAuthentication(t *testing.T) {
	r := newRouter(apiv1.Deps{Subscriptions: &fakeSubscriptions{}})

	t.Run("missing token returns 401 in french by default", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/packs/my-subscriptions", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("want 401, got %d", rec.Code)
		}
		if msg := errorOf(t, rec); msg != "Authentification requise." {
			t.Fatalf("unexpected message %q", msg)
		}
	})

	t.Run("unknown token returns 401 in the requested language", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/packs/my-subscriptions", "forged", "", "Accept-Language", "en-US,en;q=0.9")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("want 401, got %d", rec.Code)
		}
		if msg := errorOf(t, rec); msg != "Authentication required." {
			t.Fatalf("unexpected message %q", msg)
		}
	})
}

func TestCapabilities(t *testing.T) {
	subs := &fakeSubscriptions{}
	r := newRouter(apiv1.Deps{Subscriptions: subs})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"student subscribes", http.MethodPost, "/packs/subscribe", "student", `{"packId":"p1"}`, http.StatusCreated},
		{"coach cannot subscribe", http.MethodPost, "/packs/subscribe", "coach", `{"packId":"p1"}`, http.StatusForbidden},
		{"admin cannot subscribe", http.MethodPost, "/packs/subscribe", "admin", `{"packId":"p1"}`, http.StatusForbidden},
		{"student cannot confirm payments", http.MethodPatch, "/packs/subscriptions/s1/payment", "student", `{"amount":1000}`, http.StatusForbidden},
		{"student cannot activate", http.MethodPatch, "/packs/s1/activate", "student", "", http.StatusForbidden},
		{"admin activates", http.MethodPatch, "/packs/s1/activate", "admin", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("want %d, got %d, body=%s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
	if len(subs.calls) != 2 || subs.calls[0] != "subscribe:student-id:p1" || subs.calls[1] != "activate:s1" {
		t.Fatalf("only allowed calls should reach the engine, got %v", subs.calls)
	}
}

func TestCan(t *testing.T) {
	if !apiv1.Can(model.RoleStudent, apiv1.CapSubscribe) || apiv1.Can(model.RoleStudent, apiv1.CapViewAdmin) {
		t.Fatalf("unexpected student capabilities")
	}
	if apiv1.Can(model.RoleAccompagnateur, apiv1.CapSubscribe) || apiv1.Can(model.RoleAccompagnateur, apiv1.CapManageResources) {
		t.Fatalf("coaches hold no route capability")
	}
	for _, c := range []apiv1.Capability{apiv1.CapConfirmPayments, apiv1.CapManagePacks, apiv1.CapManageUsers, apiv1.CapViewAdmin, apiv1.CapManageResources} {
		if !apiv1.Can(model.RoleAdmin, c) {
			t.Fatalf("admin should hold capability %d", c)
		}
	}
	if apiv1.Can(model.Role("ROOT"), apiv1.CapSubscribe) {
		t.Fatalf("unknown roles hold nothing")
	}
}

func TestSubscriptionRoutes(t *testing.T) {
	t.Run("subscribe returns the pending subscription", func(t *testing.T) {
		r := newRouter(apiv1.Deps{Subscriptions: &fakeSubscriptions{}})

		rec := do(r, http.MethodPost, "/packs/subscribe", "student", `{"packId":"p1"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("want 201, got %d", rec.Code)
		}
		var body struct {
			Subscription apiv1.Subscription `json:"subscription"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Subscription.Status != model.SubscriptionStatusPending || body.Subscription.Pack == nil || body.Subscription.Pack.Price != 50000 {
			t.Fatalf("unexpected subscription %+v", body.Subscription)
		}
	})

	t.Run("my subscriptions include payments", func(t *testing.T) {
		r := newRouter(apiv1.Deps{Subscriptions: &fakeSubscriptions{}})

		rec := do(r, http.MethodGet, "/packs/my-subscriptions", "student", "")

		var body struct {
			Subscriptions []apiv1.Subscription `json:"subscriptions"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Subscriptions) != 1 || len(body.Subscriptions[0].Payments) != 1 || body.Subscriptions[0].AmountPaid != 75000 {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("pay answers with a localized message", func(t *testing.T) {
		subs := &fakeSubscriptions{}
		r := newRouter(apiv1.Deps{Subscriptions: subs})

		rec := do(r, http.MethodPost, "/packs/pay", "student", `{"method":"WAVE","reference":"TX-1","amount":25000}`, "Accept-Language", "en")

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(rec.Body).Decode(&body)
		if !strings.HasPrefix(body.Message, "Payment recorded") {
			t.Fatalf("unexpected message %q", body.Message)
		}
		if subs.lastInput.Amount != 25000 || subs.lastInput.Method != "WAVE" || subs.lastInput.Reference != "TX-1" {
			t.Fatalf("unexpected input %+v", subs.lastInput)
		}
	})

	t.Run("admin records a confirmed payment", func(t *testing.T) {
		subs := &fakeSubscriptions{}
		r := newRouter(apiv1.Deps{Subscriptions: subs})

		rec := do(r, http.MethodPatch, "/packs/subscriptions/s9/payment", "admin", `{"amount":75000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		if subs.calls[0] != "record:s9" || subs.lastAmt != 75000 {
			t.Fatalf("unexpected call %v amount %d", subs.calls, subs.lastAmt)
		}
	})

	t.Run("malformed json returns 400", func(t *testing.T) {
		r := newRouter(apiv1.Deps{Subscriptions: &fakeSubscriptions{}})

		rec := do(r, http.MethodPost, "/packs/pay", "student", `{"amount":`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})

	t.Run("missing pack id returns 422", func(t *testing.T) {
		r := newRouter(apiv1.Deps{Subscriptions: &fakeSubscriptions{}})

		rec := do(r, http.MethodPost, "/packs/subscribe", "student", `{}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("want 422, got %d", rec.Code)
		}
	})
}

func TestMalformedIDsReturn404(t *testing.T) {
	tests := []struct {
		name, method, path, token, body string
	}{
		{"subscribe", http.MethodPost, "/packs/subscribe", "student", `{"packId":"abc"}`},
		{"confirm payment", http.MethodPatch, "/packs/subscriptions/abc/payment", "admin", `{"amount":1000}`},
		{"activate", http.MethodPatch, "/packs/abc/activate", "admin", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := &fakeSubscriptions{err: domain.ErrNotFound}
			r := newRouter(apiv1.Deps{Subscriptions: subs})

			rec := do(r, tt.method, tt.path, tt.token, tt.body)

			if rec.Code != http.StatusNotFound {
				t.Fatalf("want 404, got %d (%s)", rec.Code, rec.Body.String())
			}
			if len(subs.calls) != 1 {
				t.Fatalf("expected one use case call, got %v", subs.calls)
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
		msg  string
	}{
		{domain.ErrPackUnavailable, http.StatusNotFound, "Pack introuvable ou inactif."},
		{domain.ErrNoPayableSubscription, http.StatusNotFound, "Aucun abonnement en attente de paiement."},
		{domain.ErrSubscriptionClosed, http.StatusConflict, "Cet abonnement est clôturé."},
		{domain.ErrInvalidArgument, http.StatusUnprocessableEntity, "Données invalides."},
		{domain.ErrNotFound, http.StatusNotFound, "Ressource introuvable."},
		{domain.ErrInvalidState, http.StatusConflict, "Opération impossible dans l'état actuel."},
		{domain.ErrAlreadyExists, http.StatusConflict, "Cette ressource existe déjà."},
		{domain.ErrForbidden, http.StatusForbidden, "Accès refusé."},
		{errors.New("connection reset"), http.StatusInternalServerError, "Une erreur est survenue, veuillez réessayer."},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := newRouter(apiv1.Deps{Subscriptions: &fakeSubscriptions{err: tt.err}})

			rec := do(r, http.MethodPost, "/packs/pay", "student", `{"method":"OM","amount":1000}`)

			if rec.Code != tt.want {
				t.Fatalf("want %d, got %d", tt.want, rec.Code)
			}
			if msg := errorOf(t, rec); msg != tt.msg {
				t.Fatalf("want %q, got %q", tt.msg, msg)
			}
		})
	}
}

func TestAuthRoutes(t *testing.T) {
	t.Run("login returns user and tokens", func(t *testing.T) {
		auth := &fakeAuth{}
		r := newRouter(apiv1.Deps{Auth: auth})

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"awa@example.com","password":"secret1"}`))
		req.RemoteAddr = "10.0.0.7:51234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		var body apiv1.AuthResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Token != "access" || body.RefreshToken != "refresh" || body.User.Email != "awa@example.com" {
			t.Fatalf("unexpected body %+v", body)
		}
		if auth.ip != "10.0.0.7" {
			t.Fatalf("expected the client ip to reach the use case, got %q", auth.ip)
		}
	})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"disabled account", domain.ErrAccountDisabled, http.StatusForbidden},
		{"throttled", domain.ErrRateLimited, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(apiv1.Deps{Auth: &fakeAuth{err: tt.err}})
			rec := do(r, http.MethodPost, "/auth/login", "", `{"email":"a@b.c","password":"x"}`)
			if rec.Code != tt.want {
				t.Fatalf("want %d, got %d", tt.want, rec.Code)
			}
		})
	}

	t.Run("register rejects missing fields before the use case", func(t *testing.T) {
		auth := &fakeAuth{}
		r := newRouter(apiv1.Deps{Auth: auth})
		rec := do(r, http.MethodPost, "/auth/register", "", `{"email":"a@b.c"}`)
		if rec.Code != http.StatusUnprocessableEntity || auth.ip != "" {
			t.Fatalf("want 422 without a call, got %d", rec.Code)
		}
	})

	t.Run("register conflict returns 409", func(t *testing.T) {
		r := newRouter(apiv1.Deps{Auth: &fakeAuth{err: domain.ErrEmailTaken}})
		rec := do(r, http.MethodPost, "/auth/register", "", `{"email":"a@b.c","password":"secret1","firstName":"A","lastName":"B"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("want 409, got %d", rec.Code)
		}
		if msg := errorOf(t, rec); msg != "Un compte existe déjà avec cet email." {
			t.Fatalf("unexpected message %q", msg)
		}
	})
}

func TestDocumentUpload(t *testing.T) {
	docs := &fakeDocuments{}
	r := newRouter(apiv1.Deps{Documents: docs})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("category", "plan")
	_ = mw.WriteField("memoireId", "mem-1")
	fw, _ := mw.CreateFormFile("file", "plan.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer coach")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d, body=%s", rec.Code, rec.Body.String())
	}
	if docs.got.Name != "plan.pdf" || docs.body != "%PDF-1.4" || docs.category != "plan" || docs.memoire != "mem-1" {
		t.Fatalf("unexpected upload %+v %q %q %q", docs.got, docs.body, docs.category, docs.memoire)
	}

	t.Run("missing file part returns 422", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("category", "plan")
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer student")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("want 422, got %d", rec.Code)
		}
	})

	t.Run("review errors are mapped", func(t *testing.T) {
		rec := do(r, http.MethodPatch, "/documents/d1/review", "student", `{"status":"APPROVED"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("want 403, got %d", rec.Code)
		}
	})
}

func TestExportMemoire(t *testing.T) {
	t.Run("streams the rendered pdf as an attachment", func(t *testing.T) {
		r := newRouter(apiv1.Deps{Export: fakeExport{}})

		rec := do(r, http.MethodGet, "/export/memoire/m1/pdf", "coach", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Fatalf("unexpected content type %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="memoire-m1.pdf"`) {
			t.Fatalf("unexpected disposition %q", cd)
		}
		if !strings.HasPrefix(rec.Body.String(), "%PDF") {
			t.Fatalf("expected pdf bytes")
		}
	})

	t.Run("failures stay json", func(t *testing.T) {
		r := newRouter(apiv1.Deps{Export: fakeExport{err: domain.ErrForbidden}})

		rec := do(r, http.MethodGet, "/export/memoire/m1/pdf", "student", "")

		if rec.Code != http.StatusForbidden || !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
			t.Fatalf("want json 403, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
		}
	})
}

func TestExportContent(t *testing.T) {
	t.Run("returns the typeset text as an attachment", func(t *testing.T) {
		r := newRouter(apiv1.Deps{Export: fakeExport{}})

		rec := do(r, http.MethodPost, "/export", "student", `{"title":"Mon memoire","content":"<p>Texte</p>"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Memoire_student-id.pdf"`) {
			t.Fatalf("unexpected disposition %q", cd)
		}
		if rec.Body.String() != "%PDF-1.3 Mon memoire" {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("missing title or content returns 422", func(t *testing.T) {
		r := newRouter(apiv1.Deps{Export: fakeExport{err: domain.ErrInvalidArgument}})

		rec := do(r, http.MethodPost, "/export", "student", `{"title":""}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("want 422, got %d", rec.Code)
		}
	})
}

func TestOriginalPaths(t *testing.T) {
	t.Run("documents upload path accepts the multipart form", func(t *testing.T) {
		docs := &fakeDocuments{}
		r := newRouter(apiv1.Deps{Documents: docs})
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile("file", "plan.pdf")
		_, _ = fw.Write([]byte("%PDF-1.4"))
		_ = mw.WriteField("category", "plan")
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer student")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated || docs.got.Name != "plan.pdf" {
			t.Fatalf("want 201 with the upload, got %d %+v", rec.Code, docs.got)
		}
	})

	t.Run("assign coach takes the student from the path", func(t *testing.T) {
		users := &fakeUsers{}
		r := newRouter(apiv1.Deps{Users: users})

		rec := do(r, http.MethodPost, "/users/s1/assign-coach", "admin", `{"coachId":"c1"}`)

		if rec.Code != http.StatusOK || len(users.calls) != 1 || users.calls[0] != "assign:s1:c1" {
			t.Fatalf("want 200 and assign:s1:c1, got %d %v", rec.Code, users.calls)
		}
	})

	t.Run("assign coach on the path stays admin only", func(t *testing.T) {
		users := &fakeUsers{}
		r := newRouter(apiv1.Deps{Users: users})

		rec := do(r, http.MethodPost, "/users/s1/assign-coach", "coach", `{"coachId":"c1"}`)

		if rec.Code != http.StatusForbidden || len(users.calls) != 0 {
			t.Fatalf("want 403 without a call, got %d %v", rec.Code, users.calls)
		}
	})

	t.Run("profile path updates the caller", func(t *testing.T) {
		users := &fakeUsers{}
		r := newRouter(apiv1.Deps{Users: users})

		rec := do(r, http.MethodPatch, "/users/me/profile", "student", `{"firstName":"Awa"}`)

		if rec.Code != http.StatusOK || users.calls[0] != "profile:student-id" {
			t.Fatalf("want 200 and profile:student-id, got %d %v", rec.Code, users.calls)
		}
	})

	t.Run("send path accepts receiverId", func(t *testing.T) {
		msgs := &fakeMessaging{}
		r := newRouter(apiv1.Deps{Messaging: msgs})

		rec := do(r, http.MethodPost, "/messages/send", "student", `{"receiverId":"coach-id","content":"bonjour"}`)

		if rec.Code != http.StatusCreated || msgs.calls[0] != "send:coach-id" {
			t.Fatalf("want 201 and send:coach-id, got %d %v", rec.Code, msgs.calls)
		}
	})

	t.Run("conversation messages path returns the thread", func(t *testing.T) {
		msgs := &fakeMessaging{}
		r := newRouter(apiv1.Deps{Messaging: msgs})

		rec := do(r, http.MethodGet, "/messages/conversations/cv1/messages", "coach", "")

		if rec.Code != http.StatusOK || msgs.calls[0] != "messages:cv1" {
			t.Fatalf("want 200 and messages:cv1, got %d %v", rec.Code, msgs.calls)
		}
	})
}

func TestCorrectRoute(t *testing.T) {
	r := newRouter(apiv1.Deps{Correction: fakeCorrection{}})

	rec := do(r, http.MethodPost, "/ai/correct", "student", `{"text":"bonjour"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	var body apiv1.Correction
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body.Corrected != "bonjour." || body.Usage.TotalTokens != 9 {
		t.Fatalf("unexpected body %+v", body)
	}

	rec = do(r, http.MethodPost, "/ai/correct", "student", `{"text":"un texte beaucoup trop long"}`, "Accept-Language", "en")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", rec.Code)
	}
	if msg := errorOf(t, rec); msg != "The text is too long to be corrected at once." {
		t.Fatalf("unexpected message %q", msg)
	}
}
