package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/infra/logging"
)

var expected = []error{
	domain.ErrNotFound,
	domain.ErrAlreadyExists,
	domain.ErrInvalidArgument,
	domain.ErrInvalidState,
	domain.ErrUnauthorized,
	domain.ErrForbidden,
	domain.ErrRateLimited,
}

// IsExpected reports whether err is a business outcome rather than a failure.
func IsExpected(err error) bool {
	for _, e := range expected {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// logFailure logs err unless it is an expected business outcome, and returns it.
func logFailure(ctx context.Context, base *zerolog.Logger, op string, err error) error {
	if err == nil || IsExpected(err) || errors.Is(err, context.Canceled) {
		return err
	}
	logging.With(ctx, base).Error().Err(err).Str("op", op).Msg("operation failed")
	return err
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
