package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/apierr"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/repos"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

const priceCacheTTL = 5 * time.Minute

// PricingService resolves unlock prices per evaluation kind. Reads go
// through redis when a client is configured; the table is read-mostly so a
// short TTL is plenty.
type PricingService interface {
	// PriceFor returns the active price for kind, or a price_not_configured
	// error when no active row exists.
	PriceFor(ctx context.Context, kind types.EvaluationKind) (int64, error)
	SetPrice(ctx context.Context, kind types.EvaluationKind, pointsCost int64, active bool) error
	List(ctx context.Context) ([]*types.PriceConfig, error)
	// SeedDefaults loads price rows from a YAML file, inserting or updating
	// each listed kind. Missing file is not an error.
	SeedDefaults(ctx context.Context, path string) error
}

type pricingService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.PriceConfigRepo
	rdb  *goredis.Client
}

func NewPricingService(db *gorm.DB, baseLog *logger.Logger, repo repos.PriceConfigRepo, rdb *goredis.Client) PricingService {
	return &pricingService{
		db:   db,
		log:  baseLog.With("service", "PricingService"),
		repo: repo,
		rdb:  rdb,
	}
}

func priceCacheKey(kind types.EvaluationKind) string {
	return "price:" + string(kind)
}

func (s *pricingService) PriceFor(ctx context.Context, kind types.EvaluationKind) (int64, error) {
	if _, err := types.ParseEvaluationKind(string(kind)); err != nil {
		return 0, apierr.InvalidArgument("invalid evaluation kind: %s", kind)
	}

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, priceCacheKey(kind)).Result()
		if err == nil {
			if cost, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return cost, nil
			}
		} else if err != goredis.Nil {
			s.log.Warn("Redis price lookup failed, falling through to db", "kind", kind, "error", err)
		}
	}

	cfg, err := s.repo.GetActiveByKind(ctx, nil, kind)
	if err != nil {
		return 0, err
	}
	if cfg == nil {
		return 0, apierr.PriceNotConfigured("no active price for evaluation kind %s", kind)
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, priceCacheKey(kind), strconv.FormatInt(cfg.PointsCost, 10), priceCacheTTL).Err(); err != nil {
			s.log.Warn("Redis price cache write failed", "kind", kind, "error", err)
		}
	}
	return cfg.PointsCost, nil
}

func (s *pricingService) SetPrice(ctx context.Context, kind types.EvaluationKind, pointsCost int64, active bool) error {
	if _, err := types.ParseEvaluationKind(string(kind)); err != nil {
		return apierr.InvalidArgument("invalid evaluation kind: %s", kind)
	}
	if pointsCost < 0 {
		return apierr.InvalidArgument("points cost must be non-negative")
	}
	cfg := &types.PriceConfig{
		ID:             uuid.New(),
		EvaluationKind: kind,
		PointsCost:     pointsCost,
		Active:         active,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, nil, cfg); err != nil {
		return err
	}
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, priceCacheKey(kind)).Err(); err != nil {
			s.log.Warn("Redis price cache invalidation failed", "kind", kind, "error", err)
		}
	}
	return nil
}

func (s *pricingService) List(ctx context.Context) ([]*types.PriceConfig, error) {
	return s.repo.List(ctx, nil)
}

type priceSeedFile struct {
	Prices []struct {
		Kind   string `yaml:"kind"`
		Points int64  `yaml:"points"`
	} `yaml:"prices"`
}

func (s *pricingService) SeedDefaults(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("Price seed file not present, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read price seed: %w", err)
	}
	var seed priceSeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse price seed: %w", err)
	}
	for _, p := range seed.Prices {
		kind, err := types.ParseEvaluationKind(p.Kind)
		if err != nil {
			s.log.Warn("Skipping unknown kind in price seed", "kind", p.Kind)
			continue
		}
		if err := s.SetPrice(ctx, kind, p.Points, true); err != nil {
			return fmt.Errorf("seed price for %s: %w", kind, err)
		}
	}
	s.log.Info("Seeded evaluation prices", "count", len(seed.Prices), "path", path)
	return nil
}
