package apiv1

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/infra/i18n"
	"cledumemoire/internal/infra/logging"
)

// errBadRequest marks a body that could not be decoded.
var errBadRequest = errors.New("malformed request body")

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// Responder writes JSON bodies and localized errors.
type Responder struct {
	bundle *i18n.Bundle
	log    *zerolog.Logger
}

func NewResponder(bundle *i18n.Bundle, logger *zerolog.Logger) *Responder {
	return &Responder{bundle: bundle, log: logging.Component(logger, "HTTP")}
}

func (rs *Responder) translate(r *http.Request, key string, args ...any) string {
	if rs.bundle == nil {
		return key
	}
	return rs.bundle.For(r.Header.Get("Accept-Language")).T(key, args...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (rs *Responder) Message(w http.ResponseWriter, r *http.Request, status int, key string, args ...any) {
	writeJSON(w, status, messageBody{Message: rs.translate(r, key, args...)})
}

// Error maps err to a status code and a localized message. Unexpected
// errors are logged with the request's trace and user ids.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, key := classify(err)
	if status >= http.StatusInternalServerError {
		l := logging.With(r.Context(), rs.log)
		l.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: rs.translate(r, key)})
}

func (rs *Responder) Internal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: rs.translate(r, "error.internal")})
}

func (rs *Responder) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	rs.Error(w, r, domain.ErrRateLimited)
}

func (rs *Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	rs.Error(w, r, domain.ErrNotFound)
}

// classify checks the specific errors before the generic kinds they wrap.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "error.bad_request"
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "error.email_taken"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "error.invalid_credentials"
	case errors.Is(err, domain.ErrAccountDisabled):
		return http.StatusForbidden, "error.account_disabled"
	case errors.Is(err, domain.ErrPackUnavailable):
		return http.StatusNotFound, "error.pack_unavailable"
	case errors.Is(err, domain.ErrNoPayableSubscription):
		return http.StatusNotFound, "error.no_payable_subscription"
	case errors.Is(err, domain.ErrSubscriptionClosed):
		return http.StatusConflict, "error.subscription_closed"
	case errors.Is(err, domain.ErrTextTooLong):
		return http.StatusUnprocessableEntity, "error.text_too_long"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "error.rate_limited"
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusUnprocessableEntity, "error.invalid_argument"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "error.unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "error.forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "error.not_found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "error.already_exists"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "error.invalid_state"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "error.internal"
	}
	return http.StatusInternalServerError, "error.internal"
}

// decodeJSON reads a single JSON object into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return errBadRequest
	}
	return nil
}

// ClientIP is the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
