package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

const (
	msgUserNotFound       = "Usuário não encontrado"
	msgInvalidCredentials = "Credenciais inválidas"
)

type Users struct {
	q      db.Querier
	tx     db.TxRunner
	repo   *storage.UserRepository
	appts  *storage.AppointmentRepository
	logger *slog.Logger
}

func NewUsers(q db.Querier, tx db.TxRunner, logger *slog.Logger, loc *time.Location) *Users {
	return &Users{
		q:      q,
		tx:     tx,
		repo:   storage.NewUserRepository(loc),
		appts:  storage.NewAppointmentRepository(loc),
		logger: logger,
	}
}

func (s *Users) List(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.User, int, error) {
	items, total, err := s.repo.List(ctx, s.q, expr, page)
	if err != nil {
		if errors.Is(err, filter.ErrInvalid) {
			return nil, 0, apperr.BadRequest(err.Error())
		}
		return nil, 0, apperr.Classify(err)
	}
	return items, total, nil
}

func (s *Users) Get(ctx context.Context, id string) (model.User, error) {
	if !isID(id) {
		return model.User{}, apperr.NotFound(msgUserNotFound)
	}
	u, err := s.repo.Get(ctx, s.q, id)
	if err != nil {
		return model.User{}, apperr.Classify(notFound(err, msgUserNotFound))
	}
	return u, nil
}

// Delete soft-deletes the user unless enabled appointments still reference it. It holds
// the same user lock as booking, so no appointment can be added meanwhile.
func (s *Users) Delete(ctx context.Context, id, modifiedBy string) error {
	if !isID(id) {
		return apperr.NotFound(msgUserNotFound)
	}
	err := s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := db.AdvisoryXactLock(ctx, tx, "user:"+id); err != nil {
			return err
		}
		n, err := s.appts.CountEnabledByUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.DeleteBlocked("Não é possível excluir o usuário: existem agendamentos vinculados")
		}
		return notFound(s.repo.SoftDelete(ctx, tx, id, modifiedBy), msgUserNotFound)
	})
	return apperr.Classify(err)
}

// Register finds the client with phone or creates it. created reports which happened.
func (s *Users) Register(ctx context.Context, phone, name string) (user model.User, created bool, err error) {
	phone, name = strings.TrimSpace(phone), strings.TrimSpace(name)
	if phone == "" {
		return model.User{}, false, apperr.BadRequest("Telefone é obrigatório")
	}
	err = s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := db.AdvisoryXactLock(ctx, tx, "phone:"+phone); err != nil {
			return err
		}
		u, err := s.repo.GetByPhone(ctx, tx, phone)
		if db.IsNotFound(err) {
			u = model.User{Phone: phone, Role: model.RoleUser}
			if name != "" {
				u.Name = &name
			}
			if err := s.repo.Insert(ctx, tx, &u); err != nil {
				return err
			}
			user, created = u, true
			return nil
		}
		if err != nil {
			return err
		}
		if u.Name == nil && name != "" {
			if err := s.repo.SetName(ctx, tx, u.ID, name); err != nil {
				return err
			}
			u.Name = &name
		}
		user = u
		return nil
	})
	if err != nil {
		return model.User{}, false, apperr.Classify(err)
	}
	return user, created, nil
}

// Authenticate checks an admin's phone and password.
func (s *Users) Authenticate(ctx context.Context, phone, password string) (model.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return model.User{}, apperr.BadRequest("Telefone e senha são obrigatórios")
	}
	u, err := s.repo.GetByPhone(ctx, s.q, phone)
	if db.IsNotFound(err) {
		return model.User{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return model.User{}, apperr.Classify(err)
	}
	if !u.Enabled || u.Password == "" || auth.VerifyPassword(u.Password, password) != nil {
		return model.User{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if u.Role != model.RoleAdmin {
		return model.User{}, apperr.Forbidden("Apenas administradores podem fazer login")
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap admin unless the phone is already registered.
func (s *Users) EnsureAdmin(ctx context.Context, phone, password string) (created bool, err error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return false, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	err = s.tx.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := db.AdvisoryXactLock(ctx, tx, "phone:"+phone); err != nil {
			return err
		}
		_, err := s.repo.GetByPhone(ctx, tx, phone)
		if err == nil || !db.IsNotFound(err) {
			return err
		}
		name := "Administrador"
		u := model.User{Phone: phone, Name: &name, Password: hash, Role: model.RoleAdmin}
		if err := s.repo.Insert(ctx, tx, &u); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if created {
		s.logger.InfoContext(ctx, "admin user created", "phone", phone)
	}
	return created, nil
}
