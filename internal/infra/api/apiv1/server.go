package apiv1

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/infra/logging"
	"cledumemoire/internal/usecase"
)

// AccessVerifier resolves the caller of an access token.
type AccessVerifier interface {
	VerifyAccess(token string) (userID string, role model.Role, err error)
}

// Deps are the use cases behind the routes. A nil use case leaves its
// routes unmounted.
type Deps struct {
	Auth          usecase.AuthUseCase
	Users         usecase.UserUseCase
	Packs         usecase.PackUseCase
	Subscriptions usecase.SubscriptionUseCase
	Admin         usecase.AdminUseCase
	Memoires      usecase.MemoireUseCase
	Messaging     usecase.MessagingUseCase
	Notifications usecase.NotificationUseCase
	Calendar      usecase.CalendarUseCase
	Documents     usecase.DocumentUseCase
	Resources     usecase.ResourceUseCase
	Correction    usecase.CorrectionUseCase
	Export        usecase.ExportUseCase

	Tokens         AccessVerifier
	MaxUploadBytes int64
}

type Server struct {
	d    Deps
	resp *Responder
	log  *zerolog.Logger
}

func NewServer(d Deps, resp *Responder, logger *zerolog.Logger) *Server {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 50 << 20
	}
	return &Server{d: d, resp: resp, log: logging.Component(logger, "APIv1")}
}

// RegisterRoutes mounts every route on r, relative to the API prefix.
func (s *Server) RegisterRoutes(r chi.Router) {
	if s.d.Auth != nil {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Post("/auth/refresh", s.refresh)
	}
	if s.d.Packs != nil {
		r.Get("/packs", s.listPacks)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		if s.d.Auth != nil {
			r.Get("/auth/me", s.me)
			r.Post("/auth/change-password", s.changePassword)
		}
		if s.d.Subscriptions != nil {
			r.With(s.require(CapSubscribe)).Post("/packs/subscribe", s.subscribe)
			r.With(s.require(CapSubscribe)).Get("/packs/my-subscriptions", s.mySubscriptions)
			r.With(s.require(CapSubscribe)).Post("/packs/pay", s.notifyPayment)
			r.With(s.require(CapConfirmPayments)).Patch("/packs/subscriptions/{id}/payment", s.recordPayment)
			r.With(s.require(CapConfirmPayments)).Patch("/packs/{id}/activate", s.activate)
		}
		if s.d.Packs != nil {
			r.With(s.require(CapManagePacks)).Post("/packs", s.createPack)
			r.With(s.require(CapManagePacks)).Patch("/packs/{id}", s.updatePack)
		}
		if s.d.Users != nil {
			r.Get("/users/me", s.myProfile)
			r.Patch("/users/me", s.updateMyProfile)
			r.Patch("/users/me/profile", s.updateMyProfile)
			r.Post("/users/me/avatar", s.updateAvatar)
			r.Patch("/users/me/avatar", s.updateAvatar)
			r.Group(func(r chi.Router) {
				r.Use(s.require(CapManageUsers))
				r.Get("/users", s.listUsers)
				r.Patch("/users/{id}", s.updateUser)
				r.Post("/users/assign-coach", s.assignCoach)
				r.Post("/users/{id}/assign-coach", s.assignCoach)
			})
		}
		if s.d.Admin != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.require(CapViewAdmin))
				r.Get("/admin/stats", s.adminStats)
				r.Get("/admin/logs", s.adminLogs)
				r.Get("/admin/subscriptions", s.adminSubscriptions)
			})
		}
		if s.d.Memoires != nil {
			r.Get("/memoire", s.getMemoire)
			r.Patch("/memoire/{id}", s.updateMemoire)
		}
		if s.d.Messaging != nil {
			r.Get("/messages/partners", s.partners)
			r.Get("/messages/conversations", s.conversations)
			r.Get("/messages/conversations/{id}", s.conversation)
			r.Get("/messages/conversations/{id}/messages", s.conversation)
			r.Post("/messages", s.sendMessage)
			r.Post("/messages/send", s.sendMessage)
		}
		if s.d.Notifications != nil {
			r.Get("/notifications", s.listNotifications)
			r.Get("/notifications/unread-count", s.unreadCount)
			r.Patch("/notifications/read-all", s.markAllRead)
			r.Patch("/notifications/{id}/read", s.markRead)
		}
		if s.d.Calendar != nil {
			r.Get("/calendar", s.listEvents)
			r.Get("/calendar/next", s.nextEvents)
			r.Post("/calendar", s.createEvent)
			r.Delete("/calendar/{id}", s.deleteEvent)
			r.Patch("/calendar/{id}/toggle", s.toggleEvent)
		}
		if s.d.Documents != nil {
			r.Get("/documents", s.listDocuments)
			r.Post("/documents", s.uploadDocument)
			r.Post("/documents/upload", s.uploadDocument)
			r.Patch("/documents/{id}/review", s.reviewDocument)
		}
		if s.d.Resources != nil {
			r.Get("/resources", s.listResources)
			r.With(s.require(CapManageResources)).Post("/resources", s.createResource)
			r.With(s.require(CapManageResources)).Delete("/resources/{id}", s.deleteResource)
		}
		if s.d.Correction != nil {
			r.Post("/ai/correct", s.correct)
		}
		if s.d.Export != nil {
			r.Post("/export", s.exportContent)
			r.Get("/export/memoire/{id}/pdf", s.exportMemoire)
		}
	})
}

type actorKey struct{}

func withActor(ctx context.Context, a usecase.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the authenticated caller stored by the auth middleware.
func ActorFrom(ctx context.Context) (usecase.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(usecase.Actor)
	return a, ok
}

func actor(r *http.Request) usecase.Actor {
	a, _ := ActorFrom(r.Context())
	return a
}

// authenticate accepts "Authorization: Bearer <access token>".
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := r.Header.Get("Authorization")
		if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") || s.d.Tokens == nil {
			s.resp.Error(w, r, domain.ErrUnauthorized)
			return
		}
		id, role, err := s.d.Tokens.VerifyAccess(strings.TrimSpace(hdr[7:]))
		if err != nil {
			s.resp.Error(w, r, domain.ErrUnauthorized)
			return
		}
		ctx := withActor(r.Context(), usecase.Actor{ID: id, Role: role})
		ctx = logging.WithUserID(ctx, id)
		ctx = logging.WithRole(ctx, string(role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) require(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Can(actor(r).Role, c) {
				s.resp.Error(w, r, domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
