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
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/logging"
)

// MemoirePatch updates a memoire. Nil pointers mean "no change".
type MemoirePatch struct {
	Title       *string
	Description *string
	Status      *string
	Progress    *int
	CurrentStep *string
	DueDate     *time.Time
}

// MemoireResult holds Own for students and List for coaches and admins.
type MemoireResult struct {
	Own  *model.MemoireView
	List []*model.MemoireView
}

type MemoireUseCase interface {
	Get(ctx context.Context, actor Actor) (*MemoireResult, error)
	Update(ctx context.Context, actor Actor, id string, patch MemoirePatch) (*model.MemoireView, error)
	// Visible loads a memoire the actor may read.
	Visible(ctx context.Context, actor Actor, id string) (*model.MemoireView, error)
}

var _ MemoireUseCase = (*memoireUC)(nil)

type memoireUC struct {
	memoires repository.MemoireRepository
	users    repository.UserRepository
	tx       repository.TransactionManager
	log      *zerolog.Logger
}

func NewMemoireUseCase(memoires repository.MemoireRepository, users repository.UserRepository, tx repository.TransactionManager, logger *zerolog.Logger) MemoireUseCase {
	return &memoireUC{memoires: memoires, users: users, tx: tx, log: logging.Component(loggerOrNop(logger), "MemoireUseCase")}
}

func (m *memoireUC) Get(ctx context.Context, actor Actor) (*MemoireResult, error) {
	switch actor.Role {
	case model.RoleStudent:
		own, err := m.ensureOwn(ctx, actor.ID)
		if err != nil {
			return nil, logFailure(ctx, m.log, "get_memoire", err)
		}
		views, err := m.views(ctx, []*model.Memoire{own})
		if err != nil {
			return nil, err
		}
		return &MemoireResult{Own: views[0]}, nil
	case model.RoleAccompagnateur:
		list, err := m.memoires.ListByCoach(ctx, repository.NoTX, actor.ID)
		if err != nil {
			return nil, logFailure(ctx, m.log, "list_coached_memoires", err)
		}
		views, err := m.views(ctx, list)
		return &MemoireResult{List: views}, err
	case model.RoleAdmin:
		list, err := m.memoires.ListAll(ctx, repository.NoTX)
		if err != nil {
			return nil, logFailure(ctx, m.log, "list_memoires", err)
		}
		views, err := m.views(ctx, list)
		return &MemoireResult{List: views}, err
	}
	return nil, domain.ErrForbidden
}

func (m *memoireUC) Update(ctx context.Context, actor Actor, id string, patch MemoirePatch) (*model.MemoireView, error) {
	var status model.MemoireStatus
	if patch.Status != nil {
		st, err := model.ParseMemoireStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}
	if patch.Progress != nil && !model.ValidProgress(*patch.Progress) {
		return nil, domain.ErrInvalidArgument
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, domain.ErrInvalidArgument
	}

	var out *model.Memoire
	err := m.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		mem, err := m.memoires.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !mem.CanEdit(actor.ID, actor.Role) {
			return domain.ErrForbidden
		}
		if patch.Title != nil {
			mem.Title = strings.TrimSpace(*patch.Title)
		}
		setTrimmed(&mem.Description, patch.Description)
		setTrimmed(&mem.CurrentStep, patch.CurrentStep)
		if status != "" {
			mem.Status = status
		}
		if patch.Progress != nil {
			mem.Progress = *patch.Progress
		}
		if patch.DueDate != nil {
			d := *patch.DueDate
			mem.DueDate = &d
		}
		mem.UpdatedAt = time.Now()
		out = mem
		return m.memoires.Save(ctx, tx, mem)
	})
	if err != nil {
		return nil, logFailure(ctx, m.log, "update_memoire", err)
	}
	views, err := m.views(ctx, []*model.Memoire{out})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (m *memoireUC) Visible(ctx context.Context, actor Actor, id string) (*model.MemoireView, error) {
	mem, err := m.memoires.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, logFailure(ctx, m.log, "get_memoire", err)
	}
	if !mem.CanEdit(actor.ID, actor.Role) {
		return nil, domain.ErrForbidden
	}
	views, err := m.views(ctx, []*model.Memoire{mem})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ensureOwn returns the student's memoire, creating the default one when
// the account predates it.
func (m *memoireUC) ensureOwn(ctx context.Context, studentID string) (*model.Memoire, error) {
	mem, err := m.memoires.FindByStudent(ctx, repository.NoTX, studentID)
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return mem, err
	}
	student, err := m.users.FindByID(ctx, repository.NoTX, studentID)
	if err != nil {
		return nil, err
	}
	mem, err = model.NewMemoireFor(uuid.NewString(), student)
	if err != nil {
		return nil, err
	}
	if err := m.memoires.Save(ctx, repository.NoTX, mem); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// created concurrently
			return m.memoires.FindByStudent(ctx, repository.NoTX, studentID)
		}
		return nil, err
	}
	return mem, nil
}

func (m *memoireUC) views(ctx context.Context, list []*model.Memoire) ([]*model.MemoireView, error) {
	ids := make([]string, 0, len(list)*2)
	for _, mem := range list {
		ids = append(ids, mem.StudentID)
		if mem.CoachID != nil {
			ids = append(ids, *mem.CoachID)
		}
	}
	users, err := m.users.FindByIDs(ctx, repository.NoTX, uniq(ids))
	if err != nil {
		return nil, logFailure(ctx, m.log, "memoire_users", err)
	}
	byID := make(map[string]*model.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}
	out := make([]*model.MemoireView, 0, len(list))
	for _, mem := range list {
		v := &model.MemoireView{Memoire: mem, Student: byID[mem.StudentID]}
		if mem.CoachID != nil {
			v.Coach = byID[*mem.CoachID]
		}
		out = append(out, v)
	}
	return out, nil
}
