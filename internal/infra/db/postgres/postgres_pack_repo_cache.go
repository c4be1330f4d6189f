package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/metrics"
	red "cledumemoire/internal/infra/redis"
)

var _ repository.PackRepository = (*packRepoCacheDecorator)(nil)

const activePacksKey = "packs:active"

type packRepoCacheDecorator struct {
	inner repository.PackRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewPackRepoCacheDecorator(inner repository.PackRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.PackRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &packRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		log:   logger,
	}
}

func packKey(id string) string { return fmt.Sprintf("pack:%s", id) }

// Reads inside a transaction bypass the cache so the engine always sees committed rows.
func (d *packRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Pack, error) {
	if tx != repository.NoTX {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := packKey(id)
	var pack model.Pack
	if d.load(ctx, key, &pack) {
		metrics.IncCacheRequest("pack", "hit")
		return &pack, nil
	}

	metrics.IncCacheRequest("pack", "miss")
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	d.store(ctx, key, p)
	return p, nil
}

func (d *packRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Pack, error) {
	var packs []*model.Pack
	if d.load(ctx, activePacksKey, &packs) {
		metrics.IncCacheRequest("pack_list", "hit")
		return packs, nil
	}

	metrics.IncCacheRequest("pack_list", "miss")
	packs, err := d.inner.ListActive(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(packs) > 0 {
		d.store(ctx, activePacksKey, packs)
	}
	return packs, nil
}

// Save invalidates the pack entry and the active list both before and after
// the write, so a read that refills the cache in between does not survive.
func (d *packRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Pack) error {
	d.invalidate(ctx, p.ID)
	if err := d.inner.Save(ctx, tx, p); err != nil {
		return err
	}
	d.invalidate(ctx, p.ID)
	return nil
}

func (d *packRepoCacheDecorator) invalidate(ctx context.Context, id string) {
	if err := d.cache.Del(ctx, packKey(id), activePacksKey); err != nil {
		d.log.Warn().Err(err).Str("pack_id", id).Msg("pack cache invalidation failed")
	}
}

func (d *packRepoCacheDecorator) load(ctx context.Context, key string, dst any) bool {
	val, err := d.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, red.Nil) {
			d.log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return false
	}
	return json.Unmarshal([]byte(val), dst) == nil
}

func (d *packRepoCacheDecorator) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, key, b, d.ttl); err != nil {
		d.log.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}
