package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/adapter"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/logging"
	"cledumemoire/internal/infra/metrics"
	red "cledumemoire/internal/infra/redis"
)

const minPasswordLen = 6

type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      string
	Role       string
	PackID     string
	University string
	Field      string
	Level      string
	IP         string
}

type AuthResult struct {
	User   *model.User
	Tokens *adapter.TokenPair
}

// LoginThrottle bounds login attempts per email within Window.
type LoginThrottle struct {
	MaxAttempts int
	Window      time.Duration
}

type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password, ip string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

var _ AuthUseCase = (*authUC)(nil)

type authUC struct {
	users    repository.UserRepository
	memoires repository.MemoireRepository
	subs     SubscriptionUseCase
	hasher   adapter.PasswordHasher
	tokens   adapter.TokenIssuer
	limiter  adapter.RateLimiter
	throttle LoginThrottle
	tx       repository.TransactionManager
	activity ActivityRecorder
	log      *zerolog.Logger
}

// NewAuthUseCase builds the account flows. limiter may be nil to disable the
// login throttle.
func NewAuthUseCase(
	users repository.UserRepository,
	memoires repository.MemoireRepository,
	subs SubscriptionUseCase,
	hasher adapter.PasswordHasher,
	tokens adapter.TokenIssuer,
	limiter adapter.RateLimiter,
	throttle LoginThrottle,
	tx repository.TransactionManager,
	activity ActivityRecorder,
	logger *zerolog.Logger,
) AuthUseCase {
	return &authUC{
		users:    users,
		memoires: memoires,
		subs:     subs,
		hasher:   hasher,
		tokens:   tokens,
		limiter:  limiter,
		throttle: throttle,
		tx:       tx,
		activity: recorderOrNop(activity),
		log:      logging.Component(loggerOrNop(logger), "AuthUseCase"),
	}
}

func (a *authUC) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if len(in.Password) < minPasswordLen {
		return nil, domain.ErrInvalidArgument
	}
	role := model.RoleStudent
	if r, err := model.ParseRole(in.Role); err == nil && r == model.RoleAccompagnateur {
		role = model.RoleAccompagnateur
	}
	user, err := model.NewUser("", in.Email, in.FirstName, in.LastName, role)
	if err != nil {
		return nil, err
	}
	user.Phone = strings.TrimSpace(in.Phone)
	user.University = strings.TrimSpace(in.University)
	user.Field = strings.TrimSpace(in.Field)
	user.Level = strings.TrimSpace(in.Level)

	if _, err := a.users.FindByEmail(ctx, repository.NoTX, user.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, logFailure(ctx, a.log, "register", err)
	}

	if user.PasswordHash, err = a.hasher.Hash(in.Password); err != nil {
		return nil, logFailure(ctx, a.log, "register_hash", err)
	}

	err = a.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := a.users.Save(ctx, tx, user); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return domain.ErrEmailTaken
			}
			return err
		}
		if user.Role != model.RoleStudent {
			return nil
		}
		m, err := model.NewMemoireFor(uuid.NewString(), user)
		if err != nil {
			return err
		}
		return a.memoires.Save(ctx, tx, m)
	})
	if err != nil {
		return nil, logFailure(ctx, a.log, "register", err)
	}

	if pid := strings.TrimSpace(in.PackID); pid != "" && user.Role == model.RoleStudent {
		if _, err := a.subs.Subscribe(ctx, user.ID, pid); err != nil {
			logging.With(ctx, a.log).Warn().Err(err).Str("pack_id", pid).Msg("initial subscription skipped")
		}
	}

	metrics.IncUsersRegistered(string(user.Role))
	a.activity.Record(ctx, user.ID, model.ActivityRegister, string(user.Role), in.IP)
	return a.issue(ctx, user)
}

func (a *authUC) Login(ctx context.Context, email, password, ip string) (res *AuthResult, err error) {
	defer func() { metrics.IncLogin(loginResult(err)) }()

	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}

	key := red.LoginFailureKey(email)
	if a.limiter != nil && a.throttle.MaxAttempts > 0 {
		ok, err := a.limiter.Allow(ctx, key, a.throttle.MaxAttempts, a.throttle.Window)
		if err != nil {
			// fail open on cache errors
			logging.With(ctx, a.log).Warn().Err(err).Msg("login throttle unavailable")
		} else if !ok {
			return nil, domain.ErrRateLimited
		}
	}

	user, err := a.users.FindByEmail(ctx, repository.NoTX, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, logFailure(ctx, a.log, "login", err)
	}
	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	if a.limiter != nil {
		if err := a.limiter.Reset(ctx, key); err != nil {
			logging.With(ctx, a.log).Debug().Err(err).Msg("login throttle reset failed")
		}
	}
	a.activity.Record(ctx, user.ID, model.ActivityLogin, "", ip)
	return a.issue(ctx, user)
}

func (a *authUC) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := a.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := a.users.FindByID(ctx, repository.NoTX, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, logFailure(ctx, a.log, "refresh", err)
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return a.issue(ctx, user)
}

func (a *authUC) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := a.users.FindByID(ctx, repository.NoTX, userID)
	return u, logFailure(ctx, a.log, "me", err)
}

func (a *authUC) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < minPasswordLen {
		return domain.ErrInvalidArgument
	}
	err := a.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		user, err := a.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := a.hasher.Compare(user.PasswordHash, current); err != nil {
			return domain.ErrInvalidCredentials
		}
		if user.PasswordHash, err = a.hasher.Hash(next); err != nil {
			return err
		}
		user.UpdatedAt = time.Now()
		return a.users.Save(ctx, tx, user)
	})
	if err != nil {
		return logFailure(ctx, a.log, "change_password", err)
	}
	a.activity.Record(ctx, userID, model.ActivityPasswordChange, "", "")
	return nil
}

func (a *authUC) issue(ctx context.Context, user *model.User) (*AuthResult, error) {
	pair, err := a.tokens.Issue(user)
	if err != nil {
		return nil, logFailure(ctx, a.log, "issue_tokens", err)
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrRateLimited):
		return "throttled"
	case errors.Is(err, domain.ErrForbidden):
		return "disabled"
	default:
		return "failure"
	}
}
