// Package settings owns the singleton scheduling configuration.
package settings

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/cache"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

const (
	lockKey  = "config"
	cacheTTL = 5 * time.Minute
)

type Service struct {
	q      db.Querier
	tx     db.TxRunner
	repo   *storage.ConfigRepository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService reads through q and writes through tx. c may be nil.
func NewService(q db.Querier, tx db.TxRunner, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{q: q, tx: tx, repo: storage.NewConfigRepository(), cache: c, logger: logger}
}

// Current returns the saved configuration; ok is false when there is none yet.
func (s *Service) Current(ctx context.Context) (model.Config, bool, error) {
	var cfg model.Config
	if s.cache.Get(ctx, cache.KeyConfig, &cfg) {
		return cfg, true, nil
	}
	cfg, err := s.repo.Get(ctx, s.q)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Config{}, false, nil
	}
	if err != nil {
		return model.Config{}, false, apperr.Classify(err)
	}
	s.cache.Set(ctx, cache.KeyConfig, cfg, cacheTTL)
	return cfg, true, nil
}

func (s *Service) Get(ctx context.Context) (model.Config, error) {
	cfg, ok, err := s.Current(ctx)
	if err != nil {
		return model.Config{}, err
	}
	if !ok {
		return model.Config{}, apperr.NotFound("Configuração não encontrada")
	}
	return cfg, nil
}

// Create saves the first configuration: the defaults overlaid with patch.
func (s *Service) Create(ctx context.Context, patch model.ConfigPatch, modifiedBy string) (model.Config, error) {
	return s.write(ctx, func(ctx context.Context, tx pgx.Tx, cur model.Config, exists bool) (model.Config, error) {
		if exists {
			return model.Config{}, apperr.Conflict("Configuração já existe", "Use PUT /config para alterar")
		}
		return s.insert(ctx, tx, patch, modifiedBy)
	})
}

// Update changes the saved configuration.
func (s *Service) Update(ctx context.Context, patch model.ConfigPatch, modifiedBy string) (model.Config, error) {
	return s.write(ctx, func(ctx context.Context, tx pgx.Tx, cur model.Config, exists bool) (model.Config, error) {
		if !exists {
			return model.Config{}, apperr.NotFound("Configuração não encontrada")
		}
		return s.update(ctx, tx, cur, patch, modifiedBy)
	})
}

// Upsert updates the configuration, creating it from the defaults first when missing.
func (s *Service) Upsert(ctx context.Context, patch model.ConfigPatch, modifiedBy string) (model.Config, error) {
	return s.write(ctx, func(ctx context.Context, tx pgx.Tx, cur model.Config, exists bool) (model.Config, error) {
		if !exists {
			return s.insert(ctx, tx, patch, modifiedBy)
		}
		return s.update(ctx, tx, cur, patch, modifiedBy)
	})
}

// EnsureDefault saves the default configuration unless one exists.
func (s *Service) EnsureDefault(ctx context.Context) (created bool, err error) {
	_, err = s.write(ctx, func(ctx context.Context, tx pgx.Tx, cur model.Config, exists bool) (model.Config, error) {
		if exists {
			return cur, nil
		}
		created = true
		return s.insert(ctx, tx, model.ConfigPatch{}, "")
	})
	if err == nil && created {
		s.logger.InfoContext(ctx, "default configuration created")
	}
	return created, err
}

func (s *Service) write(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx, cur model.Config, exists bool) (model.Config, error)) (model.Config, error) {
	var out model.Config
	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := db.AdvisoryXactLock(ctx, tx, lockKey); err != nil {
			return err
		}
		cur, err := s.repo.Get(ctx, tx)
		exists := err == nil
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		out, err = fn(ctx, tx, cur, exists)
		return err
	})
	if err != nil {
		return model.Config{}, apperr.Classify(err)
	}
	s.cache.Delete(ctx, cache.KeyConfig)
	return out, nil
}

func (s *Service) insert(ctx context.Context, tx pgx.Tx, patch model.ConfigPatch, modifiedBy string) (model.Config, error) {
	cfg := model.DefaultConfig().Apply(patch)
	if err := normalize(&cfg); err != nil {
		return model.Config{}, err
	}
	cfg.ModifiedBy = optional(modifiedBy)
	if err := s.repo.Insert(ctx, tx, &cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func (s *Service) update(ctx context.Context, tx pgx.Tx, cur model.Config, patch model.ConfigPatch, modifiedBy string) (model.Config, error) {
	cfg := cur.Apply(patch)
	if err := normalize(&cfg); err != nil {
		return model.Config{}, err
	}
	if by := optional(modifiedBy); by != nil {
		cfg.ModifiedBy = by
	}
	if err := s.repo.Update(ctx, tx, &cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// normalize validates cfg and sorts and deduplicates its work days.
func normalize(cfg *model.Config) error {
	if cfg.WorkStartHour < 0 || cfg.WorkEndHour > 24 || cfg.WorkStartHour >= cfg.WorkEndHour {
		return apperr.BadRequest("workStartHour deve ser menor que workEndHour (0 a 24)")
	}
	seen := map[int]bool{}
	days := make([]int, 0, len(cfg.WorkDays))
	for _, d := range cfg.WorkDays {
		if d < 0 || d > 6 {
			return apperr.BadRequest("workDays deve conter valores de 0 (domingo) a 6 (sábado)")
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return apperr.BadRequest("workDays não pode ser vazio")
	}
	sort.Ints(days)
	cfg.WorkDays = days
	if cfg.SlotDuration <= 0 {
		return apperr.BadRequest("slotDuration deve ser maior que zero")
	}
	if cfg.MaxAdvanceDays < 0 {
		return apperr.BadRequest("maxAdvanceDays não pode ser negativo")
	}
	if cfg.CancellationHours < 0 {
		return apperr.BadRequest("cancellationHours não pode ser negativo")
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
