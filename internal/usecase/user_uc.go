package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/adapter"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/adapters/storage"
	"cledumemoire/internal/infra/logging"
)

// FileUpload is a file received from a client.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProfilePatch is what a user may change on their own account.
type ProfilePatch struct {
	FirstName  *string
	LastName   *string
	Phone      *string
	University *string
	Field      *string
	Level      *string
}

// AdminUserPatch is what an admin may change on any account.
type AdminUserPatch struct {
	FirstName *string
	LastName  *string
	Role      *string
	IsActive  *bool
}

// UserUseCase exposes account management.
type UserUseCase interface {
	List(ctx context.Context, role string) ([]*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, id string, patch AdminUserPatch) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID string, file FileUpload) (*model.User, error)
	// AssignCoach sets the coach of the student's memoire, creating the
	// memoire when the student has none.
	AssignCoach(ctx context.Context, studentID, coachID string) (*model.MemoireView, error)
}

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

type userUC struct {
	users    repository.UserRepository
	memoires repository.MemoireRepository
	files    adapter.ObjectStorage
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

// NewUserUseCase accepts a nil files store; avatar uploads then fail with
// domain.ErrStorageUnavailable.
func NewUserUseCase(users repository.UserRepository, memoires repository.MemoireRepository, files adapter.ObjectStorage, tm repository.TransactionManager, logger *zerolog.Logger) UserUseCase {
	return &userUC{
		users:    users,
		memoires: memoires,
		files:    files,
		tm:       tm,
		log:      logging.Component(loggerOrNop(logger), "UserUseCase"),
	}
}

func (u *userUC) List(ctx context.Context, role string) ([]*model.User, error) {
	var f repository.UserFilter
	if strings.TrimSpace(role) != "" {
		r, err := model.ParseRole(role)
		if err != nil {
			return nil, err
		}
		f.Role = &r
	}
	list, err := u.users.List(ctx, repository.NoTX, f)
	return list, logFailure(ctx, u.log, "list_users", err)
}

func (u *userUC) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, id)
	return user, logFailure(ctx, u.log, "get_user", err)
}

func (u *userUC) Update(ctx context.Context, id string, patch AdminUserPatch) (*model.User, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, logFailure(ctx, u.log, "update_user", err)
	}
	if err := setName(&user.FirstName, patch.FirstName); err != nil {
		return nil, err
	}
	if err := setName(&user.LastName, patch.LastName); err != nil {
		return nil, err
	}
	if patch.Role != nil {
		r, err := model.ParseRole(*patch.Role)
		if err != nil {
			return nil, err
		}
		user.Role = r
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	return u.save(ctx, user, "update_user")
}

func (u *userUC) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.User, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, logFailure(ctx, u.log, "update_profile", err)
	}
	if err := setName(&user.FirstName, patch.FirstName); err != nil {
		return nil, err
	}
	if err := setName(&user.LastName, patch.LastName); err != nil {
		return nil, err
	}
	setTrimmed(&user.Phone, patch.Phone)
	setTrimmed(&user.University, patch.University)
	setTrimmed(&user.Field, patch.Field)
	setTrimmed(&user.Level, patch.Level)
	return u.save(ctx, user, "update_profile")
}

func (u *userUC) UpdateAvatar(ctx context.Context, userID string, file FileUpload) (*model.User, error) {
	if u.files == nil {
		return nil, domain.ErrStorageUnavailable
	}
	if file.Body == nil || !strings.HasPrefix(strings.ToLower(file.ContentType), "image/") {
		return nil, domain.ErrInvalidArgument
	}
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, logFailure(ctx, u.log, "update_avatar", err)
	}
	obj, err := u.files.Put(ctx, storage.ObjectKey("avatars", file.Name, time.Now()), file.ContentType, file.Body, file.Size)
	if err != nil {
		return nil, logFailure(ctx, u.log, "update_avatar_upload", err)
	}
	user.AvatarURL = obj.URL
	return u.save(ctx, user, "update_avatar")
}

func (u *userUC) AssignCoach(ctx context.Context, studentID, coachID string) (*model.MemoireView, error) {
	if studentID == "" || coachID == "" {
		return nil, domain.ErrInvalidArgument
	}
	var view *model.MemoireView
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		student, err := u.users.FindByID(ctx, tx, studentID)
		if err != nil {
			return err
		}
		coach, err := u.users.FindByID(ctx, tx, coachID)
		if err != nil {
			return err
		}
		if student.Role != model.RoleStudent || coach.Role != model.RoleAccompagnateur {
			return domain.ErrInvalidArgument
		}

		m, err := u.memoires.FindByStudent(ctx, tx, studentID)
		if errors.Is(err, domain.ErrNotFound) {
			m, err = model.NewMemoireFor(uuid.NewString(), student)
		}
		if err != nil {
			return err
		}
		m.CoachID = &coach.ID
		m.UpdatedAt = time.Now()
		if err := u.memoires.Save(ctx, tx, m); err != nil {
			return err
		}
		view = &model.MemoireView{Memoire: m, Student: student.Summary(), Coach: coach.Summary()}
		return nil
	})
	if err != nil {
		return nil, logFailure(ctx, u.log, "assign_coach", err)
	}
	return view, nil
}

func (u *userUC) save(ctx context.Context, user *model.User, op string) (*model.User, error) {
	user.UpdatedAt = time.Now()
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, logFailure(ctx, u.log, op, err)
	}
	return user, nil
}

func setName(dst *string, v *string) error {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return domain.ErrInvalidArgument
	}
	*dst = s
	return nil
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
