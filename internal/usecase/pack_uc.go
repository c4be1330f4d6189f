package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/logging"
)

// PackInput creates a pack. ID is generated when empty.
type PackInput struct {
	ID           string
	Name         string
	Description  string
	Price        int64
	Installment1 *int64
	Installment2 *int64
	Features     []string
	SortOrder    int
}

// PackPatch updates a pack. Nil pointers mean "no change". Installments are
// replaced together when ReplaceInstallments is set.
type PackPatch struct {
	Name                *string
	Description         *string
	Price               *int64
	ReplaceInstallments bool
	Installment1        *int64
	Installment2        *int64
	Features            *[]string
	IsActive            *bool
	SortOrder           *int
}

// PackUseCase manages the pack catalogue.
type PackUseCase interface {
	// ListActive returns active packs ordered by sort order.
	ListActive(ctx context.Context) ([]*model.Pack, error)
	Get(ctx context.Context, id string) (*model.Pack, error)
	Create(ctx context.Context, in PackInput) (*model.Pack, error)
	Update(ctx context.Context, id string, patch PackPatch) (*model.Pack, error)
}

var _ PackUseCase = (*packUC)(nil)

type packUC struct {
	packs repository.PackRepository
	log   *zerolog.Logger
}

func NewPackUseCase(packs repository.PackRepository, logger *zerolog.Logger) PackUseCase {
	return &packUC{packs: packs, log: logging.Component(loggerOrNop(logger), "PackUseCase")}
}

func (p *packUC) ListActive(ctx context.Context) ([]*model.Pack, error) {
	list, err := p.packs.ListActive(ctx, repository.NoTX)
	return list, logFailure(ctx, p.log, "list_packs", err)
}

func (p *packUC) Get(ctx context.Context, id string) (*model.Pack, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidArgument
	}
	pack, err := p.packs.FindByID(ctx, repository.NoTX, id)
	return pack, logFailure(ctx, p.log, "get_pack", err)
}

func (p *packUC) Create(ctx context.Context, in PackInput) (*model.Pack, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	pack, err := model.NewPack(id, in.Name, in.Description, in.Price, in.Installment1, in.Installment2, cleanFeatures(in.Features), in.SortOrder)
	if err != nil {
		return nil, err
	}
	if err := p.packs.Save(ctx, repository.NoTX, pack); err != nil {
		return nil, logFailure(ctx, p.log, "create_pack", err)
	}
	return pack, nil
}

func (p *packUC) Update(ctx context.Context, id string, patch PackPatch) (*model.Pack, error) {
	pack, err := p.packs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, logFailure(ctx, p.log, "update_pack", err)
	}
	if patch.Name != nil {
		pack.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		pack.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		pack.Price = *patch.Price
	}
	if patch.ReplaceInstallments {
		pack.Installment1, pack.Installment2 = patch.Installment1, patch.Installment2
	}
	if patch.Features != nil {
		pack.Features = cleanFeatures(*patch.Features)
	}
	if patch.IsActive != nil {
		pack.IsActive = *patch.IsActive
	}
	if patch.SortOrder != nil {
		pack.SortOrder = *patch.SortOrder
	}
	if err := pack.Validate(); err != nil {
		return nil, err
	}
	if err := p.packs.Save(ctx, repository.NoTX, pack); err != nil {
		return nil, logFailure(ctx, p.log, "update_pack", err)
	}
	return pack, nil
}

func cleanFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
