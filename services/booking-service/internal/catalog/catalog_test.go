package catalog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/cache"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const (
	specID = "7d1f8a9c-4b2e-4c3d-9e8f-0a1b2c3d4e5f"
	userID = "2b7c9e1a-6d4f-4a8b-b3c2-1e0f9d8c7b6a"
)

var stamp = time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

var (
	specialtyCols = []string{"id", "name", "description", "avg_duration", "price", "max_simultaneous",
		"enabled", "active", "modified_by", "created_at", "updated_at"}
	userCols = []string{"id", "phone", "name", "password", "role", "enabled", "active", "modified_by", "created_at", "updated_at"}
)

func haircutRow() *pgxmock.Rows {
	return pgxmock.NewRows(specialtyCols).AddRow(specID, "Corte", nil, 30, 50.0, 2, true, true, nil, stamp, stamp)
}

type fixture struct {
	mock   pgxmock.PgxPoolIface
	mr     *miniredis.Miniredis
	specs  *Specialties
	users  *Users
	logger *slog.Logger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	runner := db.Runner{DB: mock, Timeout: time.Second}
	return fixture{
		mock:   mock,
		mr:     mr,
		specs:  NewSpecialties(mock, runner, cache.New(rdb, "", logger), logger, time.UTC),
		users:  NewUsers(mock, runner, logger, time.UTC),
		logger: logger,
	}
}

func expectLock(mock pgxmock.PgxPoolIface, key string) {
	mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).WithArgs(key).WillReturnResult(pgxmock.NewResult("SELECT", 1))
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	var e *apperr.Error
	require.True(t, errors.As(err, &e), "want *apperr.Error, got %v", err)
	return e.Kind
}

func ptr[T any](v T) *T { return &v }

func TestListPublicCachesResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mock.ExpectQuery(regexp.QuoteMeta("WHERE enabled AND active ORDER BY name")).WillReturnRows(haircutRow())

	first, err := f.specs.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, f.mr.Exists(cache.KeyPublicSpecialties))

	second, err := f.specs.ListPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, first[0].Name, second[0].Name)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateSpecialtyValidates(t *testing.T) {
	f := newFixture(t)
	cases := []SpecialtyInput{
		{AvgDuration: ptr(30)},
		{Name: ptr("Corte"), AvgDuration: ptr(0)},
		{Name: ptr("Corte"), AvgDuration: ptr(30), MaxSimultaneous: ptr(0)},
		{Name: ptr("Corte"), AvgDuration: ptr(30), Price: ptr(-1.0)},
	}
	for _, in := range cases {
		_, err := f.specs.Create(context.Background(), in, "")
		assert.Equal(t, apperr.KindBadRequest, kindOf(t, err))
	}
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateSpecialtyInvalidatesPublicCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.mr.Set(cache.KeyPublicSpecialties, "[]"))

	f.mock.ExpectBegin()
	f.mock.ExpectQuery("INSERT INTO specialties").
		WithArgs("Corte", (*string)(nil), 30, 50.0, 2, ptr(userID)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "enabled", "active", "created_at", "updated_at"}).AddRow(specID, true, true, stamp, stamp))
	f.mock.ExpectCommit()

	sp, err := f.specs.Create(ctx, SpecialtyInput{Name: ptr(" Corte "), AvgDuration: ptr(30), Price: ptr(50.0), MaxSimultaneous: ptr(2)}, userID)
	require.NoError(t, err)
	assert.Equal(t, specID, sp.ID)
	assert.False(t, f.mr.Exists(cache.KeyPublicSpecialties))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateSpecialtyTakesAdmissionLock(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLock(f.mock, "specialty:"+specID)
	f.mock.ExpectQuery("FROM specialties WHERE id").WithArgs(specID).WillReturnRows(haircutRow())
	f.mock.ExpectQuery("UPDATE specialties").
		WithArgs(specID, "Corte", (*string)(nil), 30, 50.0, 3, true, ptr(userID)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(stamp))
	f.mock.ExpectCommit()

	sp, err := f.specs.Update(context.Background(), specID, SpecialtyInput{MaxSimultaneous: ptr(3)}, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, sp.MaxSimultaneous)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateSpecialtyMissing(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLock(f.mock, "specialty:"+specID)
	f.mock.ExpectQuery("FROM specialties WHERE id").WithArgs(specID).WillReturnError(pgx.ErrNoRows)
	f.mock.ExpectRollback()

	_, err := f.specs.Update(context.Background(), specID, SpecialtyInput{}, "")
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGetSpecialtyMalformedID(t *testing.T) {
	f := newFixture(t)
	_, err := f.specs.Get(context.Background(), "nope")
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
}

func TestDeleteSpecialtyBlockedByAppointments(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLock(f.mock, "specialty:"+specID)
	f.mock.ExpectQuery("SELECT count").WithArgs(specID).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	f.mock.ExpectRollback()

	err := f.specs.Delete(context.Background(), specID, "")
	assert.Equal(t, apperr.KindDeleteBlocked, kindOf(t, err))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDeleteSpecialtySoftDeletes(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLock(f.mock, "specialty:"+specID)
	f.mock.ExpectQuery("SELECT count").WithArgs(specID).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	f.mock.ExpectExec("UPDATE specialties").WithArgs(specID, userID).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	require.NoError(t, f.specs.Delete(context.Background(), specID, userID))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDeleteSpecialtyAlreadyGone(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLock(f.mock, "specialty:"+specID)
	f.mock.ExpectQuery("SELECT count").WithArgs(specID).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	f.mock.ExpectExec("UPDATE specialties").WithArgs(specID, "").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	f.mock.ExpectRollback()

	err := f.specs.Delete(context.Background(), specID, "")
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRegisterCreatesUser(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLock(f.mock, "phone:5511999990000")
	f.mock.ExpectQuery("WHERE phone").WithArgs("5511999990000").WillReturnError(pgx.ErrNoRows)
	f.mock.ExpectQuery("INSERT INTO users").
		WithArgs("5511999990000", ptr("Ana"), (*string)(nil), "USER", (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "enabled", "active", "created_at", "updated_at"}).AddRow(userID, true, true, stamp, stamp))
	f.mock.ExpectCommit()

	u, created, err := f.users.Register(context.Background(), " 5511999990000 ", "Ana")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, userID, u.ID)
	assert.Equal(t, model.RoleUser, u.Role)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRegisterBackfillsName(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLock(f.mock, "phone:5511999990000")
	f.mock.ExpectQuery("WHERE phone").WithArgs("5511999990000").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "5511999990000", nil, "", "USER", true, true, nil, stamp, stamp))
	f.mock.ExpectExec("UPDATE users SET name").WithArgs(userID, "Ana").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	u, created, err := f.users.Register(context.Background(), "5511999990000", "Ana")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Ana", u.DisplayName())
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRegisterRequiresPhone(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.users.Register(context.Background(), "  ", "Ana")
	assert.Equal(t, apperr.KindBadRequest, kindOf(t, err))
}

func TestAuthenticate(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		role     string
		enabled  bool
		password string
		want     apperr.Kind
		ok       bool
	}{
		{name: "admin", role: "ADMIN", enabled: true, password: "s3cret", ok: true},
		{name: "wrong password", role: "ADMIN", enabled: true, password: "nope", want: apperr.KindUnauthorized},
		{name: "disabled", role: "ADMIN", enabled: false, password: "s3cret", want: apperr.KindUnauthorized},
		{name: "client", role: "USER", enabled: true, password: "s3cret", want: apperr.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.mock.ExpectQuery("WHERE phone").WithArgs("5511000000000").
				WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "5511000000000", nil, hash, tt.role, tt.enabled, true, nil, stamp, stamp))

			u, err := f.users.Authenticate(context.Background(), "5511000000000", tt.password)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, model.RoleAdmin, u.Role)
				return
			}
			assert.Equal(t, tt.want, kindOf(t, err))
		})
	}
}

func TestAuthenticateUnknownPhone(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery("WHERE phone").WithArgs("5511000000000").WillReturnError(pgx.ErrNoRows)

	_, err := f.users.Authenticate(context.Background(), "5511000000000", "x")
	assert.Equal(t, apperr.KindUnauthorized, kindOf(t, err))

	_, err = f.users.Authenticate(context.Background(), "", "")
	assert.Equal(t, apperr.KindBadRequest, kindOf(t, err))
}

func TestEnsureAdminSkipsExisting(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLock(f.mock, "phone:5511000000000")
	f.mock.ExpectQuery("WHERE phone").WithArgs("5511000000000").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userID, "5511000000000", nil, "", "ADMIN", true, true, nil, stamp, stamp))
	f.mock.ExpectCommit()

	created, err := f.users.EnsureAdmin(context.Background(), "5511000000000", "s3cret")
	require.NoError(t, err)
	assert.False(t, created)
	require.NoError(t, f.mock.ExpectationsWereMet())

	created, err = f.users.EnsureAdmin(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureAdminCreates(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLock(f.mock, "phone:5511000000000")
	f.mock.ExpectQuery("WHERE phone").WithArgs("5511000000000").WillReturnError(pgx.ErrNoRows)
	f.mock.ExpectQuery("INSERT INTO users").
		WithArgs("5511000000000", ptr("Administrador"), pgxmock.AnyArg(), "ADMIN", (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "enabled", "active", "created_at", "updated_at"}).AddRow(userID, true, true, stamp, stamp))
	f.mock.ExpectCommit()

	created, err := f.users.EnsureAdmin(context.Background(), "5511000000000", "s3cret")
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDeleteUserBlocked(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectBegin()
	expectLock(f.mock, "user:"+userID)
	f.mock.ExpectQuery("SELECT count").WithArgs(userID).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	f.mock.ExpectRollback()

	err := f.users.Delete(context.Background(), userID, "")
	assert.Equal(t, apperr.KindDeleteBlocked, kindOf(t, err))
	require.NoError(t, f.mock.ExpectationsWereMet())
}
