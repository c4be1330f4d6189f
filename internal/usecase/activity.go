package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/worker"
)

// ActivityRecorder writes audit entries. Recording never fails the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, userID string, action model.ActivityAction, details, ip string)
}

// TaskSubmitter is the part of worker.Pool used to defer writes.
type TaskSubmitter interface {
	Submit(task worker.Task) error
}

var _ ActivityRecorder = (*activityRecorder)(nil)

type activityRecorder struct {
	logs  repository.ActivityLogRepository
	tasks TaskSubmitter
	log   *zerolog.Logger
}

// NewActivityRecorder writes through tasks when given, inline otherwise.
func NewActivityRecorder(logs repository.ActivityLogRepository, tasks TaskSubmitter, logger *zerolog.Logger) ActivityRecorder {
	return &activityRecorder{logs: logs, tasks: tasks, log: logger}
}

func (a *activityRecorder) Record(ctx context.Context, userID string, action model.ActivityAction, details, ip string) {
	entry := &model.ActivityLog{
		ID:        uuid.NewString(),
		Action:    action,
		Details:   details,
		IP:        ip,
		CreatedAt: time.Now(),
	}
	if userID != "" {
		entry.UserID = &userID
	}

	write := func(ctx context.Context) error {
		if err := a.logs.Save(ctx, repository.NoTX, entry); err != nil {
			a.log.Warn().Err(err).Str("action", string(action)).Msg("activity log write failed")
			return err
		}
		return nil
	}

	if a.tasks == nil {
		_ = write(context.WithoutCancel(ctx))
		return
	}
	if err := a.tasks.Submit(write); err != nil {
		a.log.Warn().Err(err).Str("action", string(action)).Msg("activity log dropped")
	}
}

// nopRecorder is used when a use case is built without a recorder.
type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, model.ActivityAction, string, string) {}

func recorderOrNop(r ActivityRecorder) ActivityRecorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

func loggerOrNop(l *zerolog.Logger) *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return l
}
