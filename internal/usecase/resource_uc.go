package usecase

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/adapter"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/adapters/storage"
	"cledumemoire/internal/infra/logging"
)

// ResourceInput carries either File or Link.
type ResourceInput struct {
	Title       string
	Description string
	Category    string
	File        *FileUpload
	Link        string
}

type ResourceUseCase interface {
	List(ctx context.Context, category string) ([]*model.Resource, error)
	Create(ctx context.Context, actor Actor, in ResourceInput) (*model.Resource, error)
	Delete(ctx context.Context, id string) error
}

var _ ResourceUseCase = (*resourceUC)(nil)

type resourceUC struct {
	resources repository.ResourceRepository
	files     adapter.ObjectStorage
	log       *zerolog.Logger
}

func NewResourceUseCase(resources repository.ResourceRepository, files adapter.ObjectStorage, logger *zerolog.Logger) ResourceUseCase {
	return &resourceUC{resources: resources, files: files, log: logging.Component(loggerOrNop(logger), "ResourceUseCase")}
}

func (r *resourceUC) List(ctx context.Context, category string) ([]*model.Resource, error) {
	c := strings.TrimSpace(category)
	if c != "" {
		c = model.NormalizeCategory(c)
	}
	list, err := r.resources.List(ctx, repository.NoTX, c)
	return list, logFailure(ctx, r.log, "list_resources", err)
}

func (r *resourceUC) Create(ctx context.Context, actor Actor, in ResourceInput) (*model.Resource, error) {
	title := strings.TrimSpace(in.Title)
	link := strings.TrimSpace(in.Link)
	if title == "" || (in.File == nil) == (link == "") {
		return nil, domain.ErrInvalidArgument
	}

	res := &model.Resource{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    model.NormalizeCategory(in.Category),
		CreatedBy:   actor.ID,
		CreatedAt:   time.Now(),
	}

	if link != "" {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, domain.ErrInvalidArgument
		}
		res.FileType = model.FileTypeLink
		res.URL = link
	} else {
		if r.files == nil {
			return nil, domain.ErrStorageUnavailable
		}
		if in.File.Body == nil || strings.TrimSpace(in.File.Name) == "" {
			return nil, domain.ErrInvalidArgument
		}
		obj, err := r.files.Put(ctx, storage.ObjectKey("resources", in.File.Name, res.CreatedAt), in.File.ContentType, in.File.Body, in.File.Size)
		if err != nil {
			return nil, logFailure(ctx, r.log, "create_resource_store", err)
		}
		res.FileType = model.DetectFileType(in.File.Name, in.File.ContentType)
		res.URL = obj.URL
		res.StorageKey = obj.Key
	}

	if err := r.resources.Save(ctx, repository.NoTX, res); err != nil {
		if res.StorageKey != "" {
			_ = r.files.Delete(context.WithoutCancel(ctx), res.StorageKey)
		}
		return nil, logFailure(ctx, r.log, "create_resource", err)
	}
	return res, nil
}

func (r *resourceUC) Delete(ctx context.Context, id string) error {
	res, err := r.resources.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return logFailure(ctx, r.log, "delete_resource", err)
	}
	if err := r.resources.Delete(ctx, repository.NoTX, id); err != nil {
		return logFailure(ctx, r.log, "delete_resource", err)
	}
	if res.StorageKey != "" && r.files != nil {
		if err := r.files.Delete(ctx, res.StorageKey); err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Str("key", res.StorageKey).Msg("resource object not removed")
		}
	}
	return nil
}
