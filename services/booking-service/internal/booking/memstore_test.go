package booking

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/admission"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/whatsapp"
)

// memStore keeps committed rows in maps. A transaction stages its writes and applies
// them on commit; Lock holds a real mutex per key until the transaction ends.
type memStore struct {
	mu     sync.Mutex
	appts  map[string]model.Appointment
	users  map[string]model.User
	specs  map[string]model.Specialty
	events []outbox.Event

	locks  sync.Map
	locked []string
	txs    atomic.Int32

	failEmit error
}

func newMemStore() *memStore {
	return &memStore{
		appts: map[string]model.Appointment{},
		users: map[string]model.User{},
		specs: map[string]model.Specialty{},
	}
}

func (s *memStore) addSpecialty(name string, max int) model.Specialty {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := model.Specialty{ID: uuid.NewString(), Name: name, AvgDuration: 30, MaxSimultaneous: max, Enabled: true, Active: true}
	s.specs[sp.ID] = sp
	return sp
}

func (s *memStore) addUser(phone string, enabled bool) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uuid.NewString(), Phone: phone, Role: model.RoleUser, Enabled: enabled, Active: enabled}
	s.users[u.ID] = u
	return u
}

func (s *memStore) lockedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.locked...)
}

func (s *memStore) appointment(id string) model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appts[id]
}

func (s *memStore) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.EventType
	}
	return out
}

func (s *memStore) counts() (appts, users int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appts), len(s.users)
}

func (s *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.txs.Add(1)
	tx := &memTx{s: s, appts: map[string]model.Appointment{}, users: map[string]model.User{}, held: map[string]*sync.Mutex{}}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range tx.appts {
		s.appts[id] = a
	}
	for id, u := range tx.users {
		s.users[id] = u
	}
	s.events = append(s.events, tx.events...)
	return nil
}

func (s *memStore) Appointment(_ context.Context, id string) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return model.Appointment{}, pgx.ErrNoRows
	}
	return a, nil
}

func (s *memStore) Appointments(_ context.Context, _ filter.Expr, _ filter.Page) ([]model.Appointment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Appointment, 0, len(s.appts))
	for _, a := range s.appts {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (s *memStore) PublicAppointments(_ context.Context, from, to time.Time) ([]model.PublicAppointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PublicAppointment
	for _, a := range s.appts {
		if a.Enabled && a.Active && a.Status != model.StatusCanceled && !a.StartTime.Before(from) && !a.StartTime.After(to) {
			out = append(out, model.PublicAppointment{ID: a.ID, SpecialtyID: a.SpecialtyID, StartTime: a.StartTime, EndTime: a.EndTime, Status: a.Status})
		}
	}
	return out, nil
}

func (s *memStore) Occupying(_ context.Context, specialtyID string, from, to time.Time) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := admission.Query{SpecialtyID: specialtyID, Window: admission.Window{Start: from, End: to}}
	var out []model.Appointment
	for _, a := range s.appts {
		if q.Counts(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memStore) BookableSpecialty(_ context.Context, id string) (model.Specialty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.specs[id]
	if !ok || !sp.Enabled || !sp.Active {
		return model.Specialty{}, pgx.ErrNoRows
	}
	return sp, nil
}

type memTx struct {
	s      *memStore
	appts  map[string]model.Appointment
	users  map[string]model.User
	events []outbox.Event
	held   map[string]*sync.Mutex
}

func (t *memTx) release() {
	for _, m := range t.held {
		m.Unlock()
	}
}

func (t *memTx) Lock(_ context.Context, keys ...string) error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, k := range sorted {
		if _, ok := t.held[k]; ok {
			continue
		}
		v, _ := t.s.locks.LoadOrStore(k, &sync.Mutex{})
		m := v.(*sync.Mutex)
		m.Lock()
		t.held[k] = m
		t.s.mu.Lock()
		t.s.locked = append(t.s.locked, k)
		t.s.mu.Unlock()
	}
	return nil
}

func (t *memTx) allAppointments() []model.Appointment {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	out := make([]model.Appointment, 0, len(t.s.appts)+len(t.appts))
	for id, a := range t.s.appts {
		if _, staged := t.appts[id]; !staged {
			out = append(out, a)
		}
	}
	for _, a := range t.appts {
		out = append(out, a)
	}
	return out
}

func (t *memTx) allUsers() []model.User {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	out := make([]model.User, 0, len(t.s.users)+len(t.users))
	for id, u := range t.s.users {
		if _, staged := t.users[id]; !staged {
			out = append(out, u)
		}
	}
	for _, u := range t.users {
		out = append(out, u)
	}
	return out
}

func (t *memTx) UserByID(_ context.Context, id string) (model.User, error) {
	for _, u := range t.allUsers() {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, pgx.ErrNoRows
}

func (t *memTx) UserByPhone(_ context.Context, phone string) (model.User, error) {
	for _, u := range t.allUsers() {
		if u.Phone == phone {
			return u, nil
		}
	}
	return model.User{}, pgx.ErrNoRows
}

func (t *memTx) InsertUser(_ context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	u.Enabled, u.Active = true, true
	t.users[u.ID] = *u
	return nil
}

func (t *memTx) SetUserName(ctx context.Context, id, name string) error {
	u, err := t.UserByID(ctx, id)
	if err != nil {
		return err
	}
	u.Name = &name
	t.users[id] = u
	return nil
}

func (t *memTx) BookableSpecialty(ctx context.Context, id string) (model.Specialty, error) {
	return t.s.BookableSpecialty(ctx, id)
}

func (t *memTx) AppointmentForUpdate(ctx context.Context, id string) (model.Appointment, error) {
	if err := t.Lock(ctx, "row:"+id); err != nil {
		return model.Appointment{}, err
	}
	for _, a := range t.allAppointments() {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Appointment{}, pgx.ErrNoRows
}

func (t *memTx) NextForPhone(_ context.Context, phones []string, from, to time.Time) (model.Appointment, error) {
	var best *model.Appointment
	users := map[string]model.User{}
	for _, u := range t.allUsers() {
		users[u.ID] = u
	}
	for _, a := range t.allAppointments() {
		u := users[a.UserID]
		match := false
		for _, p := range phones {
			if whatsapp.Digits(u.Phone) == p {
				match = true
			}
		}
		if !match || !a.Enabled || !a.Active {
			continue
		}
		if a.Status != model.StatusPending && a.Status != model.StatusConfirmed {
			continue
		}
		if a.StartTime.Before(from) || a.StartTime.After(to) {
			continue
		}
		if best == nil || a.StartTime.Before(best.StartTime) {
			a := a
			best = &a
		}
	}
	if best == nil {
		return model.Appointment{}, pgx.ErrNoRows
	}
	return *best, nil
}

func (t *memTx) CountOverlapping(_ context.Context, q admission.Query) (int, error) {
	return admission.CountOverlapping(t.allAppointments(), q), nil
}

func (t *memTx) InsertAppointment(_ context.Context, a *model.Appointment) error {
	a.ID = uuid.NewString()
	a.Enabled, a.Active = true, true
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	t.appts[a.ID] = *a
	return nil
}

func (t *memTx) UpdateAppointment(_ context.Context, a *model.Appointment) error {
	a.UpdatedAt = time.Now()
	t.appts[a.ID] = *a
	return nil
}

func (t *memTx) DeleteAppointment(ctx context.Context, id, modifiedBy string) error {
	a, err := t.AppointmentForUpdate(ctx, id)
	if err != nil {
		return err
	}
	a.Enabled, a.Active = false, false
	if modifiedBy != "" {
		a.ModifiedBy = &modifiedBy
	}
	t.appts[id] = a
	return nil
}

func (t *memTx) Emit(_ context.Context, evt outbox.Event) error {
	if t.s.failEmit != nil {
		return t.s.failEmit
	}
	t.events = append(t.events, evt)
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []model.Notice
	admin     []model.Notice
	ok        bool
	panics    bool
}

func (n *fakeNotifier) SendAppointmentConfirmation(_ context.Context, notice model.Notice) bool {
	if n.panics {
		panic("gateway exploded")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, notice)
	return n.ok
}

func (n *fakeNotifier) SendAdminConfirmation(_ context.Context, notice model.Notice) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.admin = append(n.admin, notice)
	return n.ok
}

func (n *fakeNotifier) counts() (confirmed, admin int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.confirmed), len(n.admin)
}

type staticConfig struct {
	cfg model.Config
	ok  bool
}

func (c staticConfig) Current(context.Context) (model.Config, bool, error) {
	return c.cfg, c.ok, nil
}
