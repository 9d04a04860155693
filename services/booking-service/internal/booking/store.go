package booking

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/admission"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
)

// Store is the persistence the workflow needs. Reads run on their own; every write
// happens on a Tx handed out by InTx. Lookups of missing rows return pgx.ErrNoRows.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Appointment(ctx context.Context, id string) (model.Appointment, error)
	Appointments(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.Appointment, int, error)
	PublicAppointments(ctx context.Context, from, to time.Time) ([]model.PublicAppointment, error)
	Occupying(ctx context.Context, specialtyID string, from, to time.Time) ([]model.Appointment, error)
	BookableSpecialty(ctx context.Context, id string) (model.Specialty, error)
}

// Tx is one open transaction.
type Tx interface {
	// Lock takes transaction-scoped locks on keys in a deadlock-free order.
	Lock(ctx context.Context, keys ...string) error

	UserByID(ctx context.Context, id string) (model.User, error)
	UserByPhone(ctx context.Context, phone string) (model.User, error)
	InsertUser(ctx context.Context, u *model.User) error
	SetUserName(ctx context.Context, id, name string) error

	BookableSpecialty(ctx context.Context, id string) (model.Specialty, error)

	AppointmentForUpdate(ctx context.Context, id string) (model.Appointment, error)
	NextForPhone(ctx context.Context, phones []string, from, to time.Time) (model.Appointment, error)
	CountOverlapping(ctx context.Context, q admission.Query) (int, error)
	InsertAppointment(ctx context.Context, a *model.Appointment) error
	UpdateAppointment(ctx context.Context, a *model.Appointment) error
	DeleteAppointment(ctx context.Context, id, modifiedBy string) error

	Emit(ctx context.Context, evt outbox.Event) error
}

// Pool is what PGStore needs from the database handle.
type Pool interface {
	db.Querier
	db.Beginner
}

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	pool   Pool
	runner db.Runner

	appointments *storage.AppointmentRepository
	specialties  *storage.SpecialtyRepository
	users        *storage.UserRepository
	outbox       *outbox.Repository
}

// NewPGStore bounds every transaction by txTimeout and resolves bare filter dates in loc.
func NewPGStore(pool Pool, txTimeout time.Duration, loc *time.Location) *PGStore {
	return &PGStore{
		pool:         pool,
		runner:       db.Runner{DB: pool, Timeout: txTimeout},
		appointments: storage.NewAppointmentRepository(loc),
		specialties:  storage.NewSpecialtyRepository(loc),
		users:        storage.NewUserRepository(loc),
		outbox:       outbox.NewRepository(),
	}
}

func (s *PGStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx, s: s})
	})
}

func (s *PGStore) Appointment(ctx context.Context, id string) (model.Appointment, error) {
	return s.appointments.Get(ctx, s.pool, id)
}

func (s *PGStore) Appointments(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.Appointment, int, error) {
	return s.appointments.List(ctx, s.pool, expr, page)
}

func (s *PGStore) PublicAppointments(ctx context.Context, from, to time.Time) ([]model.PublicAppointment, error) {
	return s.appointments.ListPublic(ctx, s.pool, from, to)
}

func (s *PGStore) Occupying(ctx context.Context, specialtyID string, from, to time.Time) ([]model.Appointment, error) {
	return s.appointments.ListOccupying(ctx, s.pool, specialtyID, from, to)
}

func (s *PGStore) BookableSpecialty(ctx context.Context, id string) (model.Specialty, error) {
	return s.specialties.GetBookable(ctx, s.pool, id)
}

type pgTx struct {
	tx pgx.Tx
	s  *PGStore
}

func (t *pgTx) Lock(ctx context.Context, keys ...string) error {
	return db.AdvisoryXactLock(ctx, t.tx, keys...)
}

func (t *pgTx) UserByID(ctx context.Context, id string) (model.User, error) {
	return t.s.users.Get(ctx, t.tx, id)
}

func (t *pgTx) UserByPhone(ctx context.Context, phone string) (model.User, error) {
	return t.s.users.GetByPhone(ctx, t.tx, phone)
}

func (t *pgTx) InsertUser(ctx context.Context, u *model.User) error {
	return t.s.users.Insert(ctx, t.tx, u)
}

func (t *pgTx) SetUserName(ctx context.Context, id, name string) error {
	return t.s.users.SetName(ctx, t.tx, id, name)
}

func (t *pgTx) BookableSpecialty(ctx context.Context, id string) (model.Specialty, error) {
	return t.s.specialties.GetBookable(ctx, t.tx, id)
}

func (t *pgTx) AppointmentForUpdate(ctx context.Context, id string) (model.Appointment, error) {
	return t.s.appointments.GetForUpdate(ctx, t.tx, id)
}

func (t *pgTx) NextForPhone(ctx context.Context, phones []string, from, to time.Time) (model.Appointment, error) {
	return t.s.appointments.NextForPhone(ctx, t.tx, phones, from, to)
}

func (t *pgTx) CountOverlapping(ctx context.Context, q admission.Query) (int, error) {
	return t.s.appointments.CountOverlapping(ctx, t.tx, q)
}

func (t *pgTx) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	return t.s.appointments.Insert(ctx, t.tx, a)
}

func (t *pgTx) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	return t.s.appointments.Update(ctx, t.tx, a)
}

func (t *pgTx) DeleteAppointment(ctx context.Context, id, modifiedBy string) error {
	return t.s.appointments.SoftDelete(ctx, t.tx, id, modifiedBy)
}

func (t *pgTx) Emit(ctx context.Context, evt outbox.Event) error {
	return t.s.outbox.Insert(ctx, t.tx, evt)
}
