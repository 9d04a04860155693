// Package catalog manages the specialties clients book and the users who book them.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/cache"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

const msgSpecialtyNotFound = "Especialidade não encontrada"

const publicTTL = 5 * time.Minute

// SpecialtyInput carries the fields of a create or update; nil keeps the current value.
type SpecialtyInput struct {
	ID              string   `json:"id"`
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	AvgDuration     *int     `json:"avgDuration"`
	Price           *float64 `json:"price"`
	MaxSimultaneous *int     `json:"maxSimultaneous"`
	Active          *bool    `json:"active"`
}

func (in SpecialtyInput) apply(s *model.Specialty) {
	if in.Name != nil {
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		s.Description = in.Description
	}
	if in.AvgDuration != nil {
		s.AvgDuration = *in.AvgDuration
	}
	if in.Price != nil {
		s.Price = *in.Price
	}
	if in.MaxSimultaneous != nil {
		s.MaxSimultaneous = *in.MaxSimultaneous
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
}

func validateSpecialty(s model.Specialty) error {
	switch {
	case s.Name == "":
		return apperr.BadRequest("Nome é obrigatório")
	case s.AvgDuration <= 0:
		return apperr.BadRequest("avgDuration deve ser maior que zero")
	case s.MaxSimultaneous < 1:
		return apperr.BadRequest("maxSimultaneous deve ser pelo menos 1")
	case s.Price < 0:
		return apperr.BadRequest("price não pode ser negativo")
	}
	return nil
}

type Specialties struct {
	q      db.Querier
	tx     db.TxRunner
	repo   *storage.SpecialtyRepository
	appts  *storage.AppointmentRepository
	cache  *cache.Cache
	logger *slog.Logger
}

func NewSpecialties(q db.Querier, tx db.TxRunner, c *cache.Cache, logger *slog.Logger, loc *time.Location) *Specialties {
	return &Specialties{
		q:      q,
		tx:     tx,
		repo:   storage.NewSpecialtyRepository(loc),
		appts:  storage.NewAppointmentRepository(loc),
		cache:  c,
		logger: logger,
	}
}

// ListPublic returns the bookable specialties, cached for a few minutes.
func (s *Specialties) ListPublic(ctx context.Context) ([]model.Specialty, error) {
	var out []model.Specialty
	if s.cache.Get(ctx, cache.KeyPublicSpecialties, &out) {
		return out, nil
	}
	out, err := s.repo.ListBookable(ctx, s.q)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	if out == nil {
		out = []model.Specialty{}
	}
	s.cache.Set(ctx, cache.KeyPublicSpecialties, out, publicTTL)
	return out, nil
}

func (s *Specialties) List(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.Specialty, int, error) {
	items, total, err := s.repo.List(ctx, s.q, expr, page)
	if err != nil {
		if errors.Is(err, filter.ErrInvalid) {
			return nil, 0, apperr.BadRequest(err.Error())
		}
		return nil, 0, apperr.Classify(err)
	}
	return items, total, nil
}

func (s *Specialties) Get(ctx context.Context, id string) (model.Specialty, error) {
	if !isID(id) {
		return model.Specialty{}, apperr.NotFound(msgSpecialtyNotFound)
	}
	sp, err := s.repo.Get(ctx, s.q, id)
	if err != nil {
		return model.Specialty{}, apperr.Classify(notFound(err, msgSpecialtyNotFound))
	}
	return sp, nil
}

func (s *Specialties) Create(ctx context.Context, in SpecialtyInput, modifiedBy string) (model.Specialty, error) {
	sp := model.Specialty{MaxSimultaneous: 1, Active: true}
	in.apply(&sp)
	if err := validateSpecialty(sp); err != nil {
		return model.Specialty{}, err
	}
	sp.ModifiedBy = optional(modifiedBy)
	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.repo.Insert(ctx, tx, &sp)
	})
	if err != nil {
		return model.Specialty{}, apperr.Classify(err)
	}
	s.cache.Delete(ctx, cache.KeyPublicSpecialties)
	return sp, nil
}

// Save updates the specialty named by in.ID, or creates one when in.ID is empty.
func (s *Specialties) Save(ctx context.Context, in SpecialtyInput, modifiedBy string) (model.Specialty, error) {
	if strings.TrimSpace(in.ID) == "" {
		return s.Create(ctx, in, modifiedBy)
	}
	return s.Update(ctx, in.ID, in, modifiedBy)
}

// Update holds the specialty's admission lock so a capacity change cannot interleave
// with a booking being admitted.
func (s *Specialties) Update(ctx context.Context, id string, in SpecialtyInput, modifiedBy string) (model.Specialty, error) {
	if !isID(id) {
		return model.Specialty{}, apperr.NotFound(msgSpecialtyNotFound)
	}
	var out model.Specialty
	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := db.AdvisoryXactLock(ctx, tx, "specialty:"+id); err != nil {
			return err
		}
		sp, err := s.repo.Get(ctx, tx, id)
		if err != nil || !sp.Enabled {
			return notFound(orNoRows(err), msgSpecialtyNotFound)
		}
		in.apply(&sp)
		if err := validateSpecialty(sp); err != nil {
			return err
		}
		if by := optional(modifiedBy); by != nil {
			sp.ModifiedBy = by
		}
		if err := s.repo.Update(ctx, tx, &sp); err != nil {
			return err
		}
		out = sp
		return nil
	})
	if err != nil {
		return model.Specialty{}, apperr.Classify(err)
	}
	s.cache.Delete(ctx, cache.KeyPublicSpecialties)
	return out, nil
}

// Delete soft-deletes the specialty unless enabled appointments still reference it.
func (s *Specialties) Delete(ctx context.Context, id, modifiedBy string) error {
	if !isID(id) {
		return apperr.NotFound(msgSpecialtyNotFound)
	}
	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := db.AdvisoryXactLock(ctx, tx, "specialty:"+id); err != nil {
			return err
		}
		n, err := s.appts.CountEnabledBySpecialty(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.DeleteBlocked("Não é possível excluir a especialidade: existem agendamentos vinculados")
		}
		return notFound(s.repo.SoftDelete(ctx, tx, id, modifiedBy), msgSpecialtyNotFound)
	})
	if err != nil {
		return apperr.Classify(err)
	}
	s.cache.Delete(ctx, cache.KeyPublicSpecialties)
	s.logger.InfoContext(ctx, "specialty deleted", "specialty_id", id)
	return nil
}

func isID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func notFound(err error, msg string) error {
	if db.IsNotFound(err) {
		return apperr.NotFound(msg)
	}
	return err
}

func orNoRows(err error) error {
	if err == nil {
		return pgx.ErrNoRows
	}
	return err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
