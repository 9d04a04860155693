package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const userColumns = `id, phone, name, COALESCE(password, ''), role, enabled, active, modified_by, created_at, updated_at`

type UserRepository struct {
	loc *time.Location
}

func NewUserRepository(loc *time.Location) *UserRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &UserRepository{loc: loc}
}

func (r *UserRepository) Get(ctx context.Context, q db.Querier, id string) (model.User, error) {
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByPhone(ctx context.Context, q db.Querier, phone string) (model.User, error) {
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}

func (r *UserRepository) List(ctx context.Context, q db.Querier, expr filter.Expr, page filter.Page) ([]model.User, int, error) {
	lq := listQuery{schema: model.UserSchema, table: "users", columns: userColumns}
	if !filter.References(expr, "enabled") {
		lq.base = "enabled"
	}
	return listPage(ctx, q, lq, r.loc, expr, page, scanUser)
}

// Insert fails with a unique violation when the phone is already registered.
func (r *UserRepository) Insert(ctx context.Context, tx pgx.Tx, u *model.User) error {
	var password *string
	if u.Password != "" {
		password = &u.Password
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO users (phone, name, password, role, modified_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, enabled, active, created_at, updated_at
	`, u.Phone, u.Name, password, string(u.Role), u.ModifiedBy).Scan(&u.ID, &u.Enabled, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) SetName(ctx context.Context, tx pgx.Tx, id, name string) error {
	_, err := tx.Exec(ctx, `UPDATE users SET name = $2, updated_at = now() WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("set user name %s: %w", id, err)
	}
	return nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, tx pgx.Tx, id, modifiedBy string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET enabled = false, active = false, modified_by = NULLIF($2, ''), updated_at = now()
		WHERE id = $1 AND enabled
	`, id, modifiedBy)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	var role string
	err := row.Scan(
		&u.ID,
		&u.Phone,
		&u.Name,
		&u.Password,
		&role,
		&u.Enabled,
		&u.Active,
		&u.ModifiedBy,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	u.Role = model.Role(role)
	return u, err
}
