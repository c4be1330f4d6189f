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
	"cledumemoire/internal/infra/adapters/storage"
	"cledumemoire/internal/infra/logging"
)

type DocumentUseCase interface {
	// List returns the documents visible to the actor, newest first.
	List(ctx context.Context, actor Actor) ([]*model.Document, error)
	// Upload stores a new version of a document. Students may omit memoireID.
	Upload(ctx context.Context, actor Actor, file FileUpload, category, memoireID string) (*model.Document, error)
	Review(ctx context.Context, actor Actor, id, status, feedback string) (*model.Document, error)
}

var _ DocumentUseCase = (*documentUC)(nil)

type documentUC struct {
	documents repository.DocumentRepository
	memoires  repository.MemoireRepository
	files     adapter.ObjectStorage
	locker    repository.UserLocker
	notifier  Notifier
	tx        repository.TransactionManager
	activity  ActivityRecorder
	log       *zerolog.Logger
}

func NewDocumentUseCase(
	documents repository.DocumentRepository,
	memoires repository.MemoireRepository,
	files adapter.ObjectStorage,
	locker repository.UserLocker,
	notifier Notifier,
	tx repository.TransactionManager,
	activity ActivityRecorder,
	logger *zerolog.Logger,
) DocumentUseCase {
	return &documentUC{
		documents: documents,
		memoires:  memoires,
		files:     files,
		locker:    locker,
		notifier:  notifierOrNop(notifier),
		tx:        tx,
		activity:  recorderOrNop(activity),
		log:       logging.Component(loggerOrNop(logger), "DocumentUseCase"),
	}
}

func (d *documentUC) List(ctx context.Context, actor Actor) ([]*model.Document, error) {
	var ids []string
	switch actor.Role {
	case model.RoleAdmin:
		list, err := d.documents.ListAll(ctx, repository.NoTX)
		return list, logFailure(ctx, d.log, "list_documents", err)
	case model.RoleStudent:
		mem, err := d.memoires.FindByStudent(ctx, repository.NoTX, actor.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return []*model.Document{}, nil
		}
		if err != nil {
			return nil, logFailure(ctx, d.log, "list_documents", err)
		}
		ids = []string{mem.ID}
	case model.RoleAccompagnateur:
		list, err := d.memoires.ListByCoach(ctx, repository.NoTX, actor.ID)
		if err != nil {
			return nil, logFailure(ctx, d.log, "list_documents", err)
		}
		for _, m := range list {
			ids = append(ids, m.ID)
		}
	default:
		return nil, domain.ErrForbidden
	}
	list, err := d.documents.ListByMemoires(ctx, repository.NoTX, ids)
	return list, logFailure(ctx, d.log, "list_documents", err)
}

func (d *documentUC) Upload(ctx context.Context, actor Actor, file FileUpload, category, memoireID string) (*model.Document, error) {
	name := strings.TrimSpace(file.Name)
	if file.Body == nil || name == "" {
		return nil, domain.ErrInvalidArgument
	}
	if d.files == nil {
		return nil, domain.ErrStorageUnavailable
	}
	mem, err := d.resolveMemoire(ctx, actor, strings.TrimSpace(memoireID))
	if err != nil {
		return nil, logFailure(ctx, d.log, "upload_document", err)
	}

	obj, err := d.files.Put(ctx, storage.ObjectKey("documents", name, time.Now()), file.ContentType, file.Body, file.Size)
	if err != nil {
		return nil, logFailure(ctx, d.log, "upload_document_store", err)
	}

	doc := &model.Document{
		ID:         uuid.NewString(),
		MemoireID:  mem.ID,
		UploaderID: actor.ID,
		Name:       name,
		URL:        obj.URL,
		StorageKey: obj.Key,
		MimeType:   file.ContentType,
		Size:       obj.Size,
		Category:   model.NormalizeCategory(category),
		Status:     model.DocumentStatusPending,
		CreatedAt:  time.Now(),
	}
	err = d.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// versions are numbered per memoire; the student's lock serializes uploads
		if err := d.locker.LockUser(ctx, tx, mem.StudentID); err != nil {
			return err
		}
		last, err := d.documents.LastVersion(ctx, tx, mem.ID, doc.Category)
		if err != nil {
			return err
		}
		doc.Version = last + 1
		if err := d.documents.Save(ctx, tx, doc); err != nil {
			return err
		}
		if actor.Role == model.RoleStudent && mem.CoachID != nil {
			return d.notifier.Notify(ctx, tx, Notice{
				UserID:   *mem.CoachID,
				Type:     model.NotificationTypeDocument,
				TitleKey: "notification.document.title",
				Args:     []any{doc.Name, string(doc.Status)},
				Link:     "/documents",
			})
		}
		return nil
	})
	if err != nil {
		if derr := d.files.Delete(context.WithoutCancel(ctx), obj.Key); derr != nil {
			logging.With(ctx, d.log).Warn().Err(derr).Str("key", obj.Key).Msg("orphan object not removed")
		}
		return nil, logFailure(ctx, d.log, "upload_document", err)
	}

	d.activity.Record(ctx, actor.ID, model.ActivityDocumentUpload, doc.Name, "")
	return doc, nil
}

func (d *documentUC) Review(ctx context.Context, actor Actor, id, status, feedback string) (*model.Document, error) {
	if actor.Role != model.RoleAccompagnateur && actor.Role != model.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	st, err := model.ParseDocumentStatus(status)
	if err != nil {
		return nil, err
	}

	var out *model.Document
	err = d.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		doc, err := d.documents.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		mem, err := d.memoires.FindByID(ctx, tx, doc.MemoireID)
		if err != nil {
			return err
		}
		if !mem.CanEdit(actor.ID, actor.Role) {
			return domain.ErrForbidden
		}
		doc.Status = st
		doc.Feedback = strings.TrimSpace(feedback)
		if err := d.documents.Save(ctx, tx, doc); err != nil {
			return err
		}
		out = doc
		return d.notifier.Notify(ctx, tx, Notice{
			UserID:   mem.StudentID,
			Type:     model.NotificationTypeDocument,
			TitleKey: "notification.document.title",
			Args:     []any{doc.Name, string(doc.Status)},
			Body:     doc.Feedback,
			Link:     "/documents",
		})
	})
	if err != nil {
		return nil, logFailure(ctx, d.log, "review_document", err)
	}
	return out, nil
}

func (d *documentUC) resolveMemoire(ctx context.Context, actor Actor, memoireID string) (*model.Memoire, error) {
	if actor.Role == model.RoleStudent {
		mem, err := d.memoires.FindByStudent(ctx, repository.NoTX, actor.ID)
		if err != nil {
			return nil, err
		}
		if memoireID != "" && memoireID != mem.ID {
			return nil, domain.ErrForbidden
		}
		return mem, nil
	}
	if memoireID == "" {
		return nil, domain.ErrInvalidArgument
	}
	mem, err := d.memoires.FindByID(ctx, repository.NoTX, memoireID)
	if err != nil {
		return nil, err
	}
	if !mem.CanEdit(actor.ID, actor.Role) {
		return nil, domain.ErrForbidden
	}
	return mem, nil
}
