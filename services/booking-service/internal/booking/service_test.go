package booking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
)

// Monday 2030-01-07 is the booking day used throughout; now is the Sunday before.
var now = time.Date(2030, 1, 6, 9, 0, 0, 0, time.UTC)

func at(hour, min int) *time.Time {
	t := time.Date(2030, 1, 7, hour, min, 0, 0, time.UTC)
	return &t
}

type fixture struct {
	store    *memStore
	notifier *fakeNotifier
	svc      *Service
}

func newFixture(t *testing.T, cfg ConfigSource) *fixture {
	t.Helper()
	return newFixtureWithClock(t, cfg, func() time.Time { return now })
}

func newFixtureWithClock(t *testing.T, cfg ConfigSource, clock func() time.Time) *fixture {
	t.Helper()
	store := newMemStore()
	notifier := &fakeNotifier{ok: true}
	if cfg == nil {
		cfg = staticConfig{}
	}
	svc := NewService(store, cfg, notifier, slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)), Options{
		Location: time.UTC,
		Now:      clock,
	})
	t.Cleanup(svc.Drain)
	return &fixture{store: store, notifier: notifier, svc: svc}
}

func (f *fixture) book(spec model.Specialty, phone string, start, end *time.Time) (model.Appointment, error) {
	return f.svc.Create(context.Background(), CreateInput{
		UserID:      phone,
		SpecialtyID: spec.ID,
		StartTime:   start,
		EndTime:     end,
	}, Actor{})
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	var e *apperr.Error
	require.True(t, errors.As(err, &e), "expected *apperr.Error, got %v", err)
	require.Equal(t, kind, e.Kind, e.Error())
	return e
}

func TestHaircutScenario(t *testing.T) {
	f := newFixture(t, nil)
	haircut := f.store.addSpecialty("Haircut", 2)
	ctx := context.Background()

	a, err := f.book(haircut, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)
	_, err = f.book(haircut, "11900000002", at(10, 15), at(10, 45))
	require.NoError(t, err)

	_, err = f.book(haircut, "11900000003", at(10, 10), at(10, 20))
	e := requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, 2, e.Limit)
	assert.Equal(t, "Horário não disponível", e.Msg)
	assert.Equal(t, "Limite de agendamentos simultâneos atingido (2)", e.Message)

	_, err = f.svc.Cancel(ctx, a.ID, Actor{})
	require.NoError(t, err)

	_, err = f.book(haircut, "11900000003", at(10, 10), at(10, 20))
	require.NoError(t, err)
}

func TestBackToBackIsAdmitted(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)

	_, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)
	_, err = f.book(spec, "11900000002", at(10, 30), at(11, 0))
	require.NoError(t, err)
	_, err = f.book(spec, "11900000003", at(9, 30), at(10, 0))
	require.NoError(t, err)
	_, err = f.book(spec, "11900000004", at(10, 29), at(10, 31))
	requireKind(t, err, apperr.KindConflict)
}

func TestRescheduleExcludesItself(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)

	moved, err := f.svc.Update(ctx, a.ID, UpdateInput{StartTime: at(10, 0), EndTime: at(10, 30)}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, *at(10, 0), moved.StartTime)

	moved, err = f.svc.Update(ctx, a.ID, UpdateInput{StartTime: at(10, 15), EndTime: at(10, 45)}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, *at(10, 45), moved.EndTime)

	_, err = f.book(spec, "11900000002", at(10, 30), at(11, 0))
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, []string{outbox.AppointmentBooked, outbox.AppointmentUpdated, outbox.AppointmentRescheduled}, f.store.eventTypes())
}

func TestRescheduleIntoFullWindowConflicts(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()

	_, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)
	b, err := f.book(spec, "11900000002", at(11, 0), at(11, 30))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, b.ID, UpdateInput{StartTime: at(11, 45)}, Actor{})
	requireKind(t, err, apperr.KindBadRequest)

	_, err = f.svc.Update(ctx, b.ID, UpdateInput{StartTime: at(10, 15), EndTime: at(10, 45)}, Actor{})
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, *at(11, 0), f.store.appointment(b.ID).StartTime)
}

func TestRestoringCanceledAppointmentRunsAdmission(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, a.ID, Actor{})
	require.NoError(t, err)
	_, err = f.book(spec, "11900000002", at(10, 0), at(10, 30))
	require.NoError(t, err)

	pending := model.StatusPending
	_, err = f.svc.Update(ctx, a.ID, UpdateInput{Status: &pending}, Actor{})
	requireKind(t, err, apperr.KindConflict)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)

	first, err := f.svc.Cancel(ctx, a.ID, Actor{})
	require.NoError(t, err)
	require.NotNil(t, first.CanceledAt)

	second, err := f.svc.Cancel(ctx, a.ID, Actor{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, second.Status)
	assert.Equal(t, *first.CanceledAt, *second.CanceledAt)
	assert.Equal(t, []string{outbox.AppointmentBooked, outbox.AppointmentCanceled}, f.store.eventTypes())
}

func TestCancelTerminalConflicts(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)
	done := model.StatusCompleted
	_, err = f.svc.Update(ctx, a.ID, UpdateInput{Status: &done}, Actor{})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, a.ID, Actor{})
	e := requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, "Agendamento não pode ser cancelado", e.Msg)
}

func TestInvalidWindowRejectedBeforeCounting(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)

	_, err := f.book(spec, "11900000001", at(10, 0), at(10, 0))
	requireKind(t, err, apperr.KindBadRequest)
	_, err = f.book(spec, "11900000001", at(10, 30), at(10, 0))
	requireKind(t, err, apperr.KindBadRequest)
	_, err = f.book(spec, "11900000001", nil, at(10, 0))
	requireKind(t, err, apperr.KindBadRequest)
	_, err = f.svc.Create(context.Background(), CreateInput{StartTime: at(10, 0), EndTime: at(10, 30)}, Actor{})
	requireKind(t, err, apperr.KindBadRequest)

	assert.Zero(t, f.store.txs.Load())
}

func TestNotFound(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()

	_, err := f.book(model.Specialty{ID: uuid.NewString()}, "11900000001", at(10, 0), at(10, 30))
	e := requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, "Especialidade não encontrada", e.Msg)

	_, err = f.book(model.Specialty{ID: "not-a-uuid"}, "11900000001", at(10, 0), at(10, 30))
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.svc.Create(ctx, CreateInput{UserID: uuid.NewString(), SpecialtyID: spec.ID, StartTime: at(10, 0), EndTime: at(10, 30)}, Actor{})
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.svc.Cancel(ctx, uuid.NewString(), Actor{})
	requireKind(t, err, apperr.KindNotFound)
	_, err = f.svc.Get(ctx, "42")
	requireKind(t, err, apperr.KindNotFound)
	err = f.svc.Delete(ctx, uuid.NewString(), Actor{})
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.svc.Update(ctx, "", UpdateInput{}, Actor{})
	e = requireKind(t, err, apperr.KindBadRequest)
	assert.Equal(t, "ID is required for update.", e.Msg)

	f.store.mu.Lock()
	disabled := f.store.specs[spec.ID]
	disabled.Active = false
	f.store.specs[spec.ID] = disabled
	f.store.mu.Unlock()
	_, err = f.book(spec, "11900000001", at(10, 0), at(10, 30))
	requireKind(t, err, apperr.KindNotFound)
}

func TestPhoneIdentity(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 3)
	ctx := context.Background()

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)
	require.NotNil(t, a.User)
	assert.Nil(t, a.User.Name)

	b, err := f.svc.Create(ctx, CreateInput{UserID: "11900000001", UserName: "Ana", SpecialtyID: spec.ID, StartTime: at(11, 0), EndTime: at(11, 30)}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, a.UserID, b.UserID)
	require.NotNil(t, b.User.Name)
	assert.Equal(t, "Ana", *b.User.Name)

	c, err := f.svc.Create(ctx, CreateInput{UserID: a.UserID, UserName: "Outra", SpecialtyID: spec.ID, StartTime: at(12, 0), EndTime: at(12, 30)}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, "Ana", *c.User.Name)

	_, users := f.store.counts()
	assert.Equal(t, 1, users)
}

func TestFailedTransactionLeavesNothing(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	f.store.failEmit = errors.New("outbox unavailable")

	_, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.Error(t, err)
	appts, users := f.store.counts()
	assert.Zero(t, appts)
	assert.Zero(t, users)

	f.svc.Drain()
	confirmed, _ := f.notifier.counts()
	assert.Zero(t, confirmed)
}

func TestNotificationsAreBestEffort(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 2)
	ctx := context.Background()

	f.notifier.ok = false
	a, err := f.svc.Create(ctx, CreateInput{UserID: "11900000001", UserName: "Ana", SpecialtyID: spec.ID, StartTime: at(10, 0), EndTime: at(10, 30)}, Actor{})
	require.NoError(t, err)
	f.svc.Drain()

	confirmed, _ := f.notifier.counts()
	require.Equal(t, 1, confirmed)
	n := f.notifier.confirmed[0]
	assert.Equal(t, model.Notice{AppointmentID: a.ID, Phone: "11900000001", Name: "Ana", Specialty: "Manicure", Start: *at(10, 0), DurationMinutes: 30}, n)

	f.notifier.panics = true
	_, err = f.book(spec, "11900000002", at(10, 0), at(10, 30))
	require.NoError(t, err)
	f.svc.Drain()
}

func TestConfirmNotifiesAdminConfirmation(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)

	confirmed := model.StatusConfirmed
	note := "cliente VIP"
	got, err := f.svc.Update(ctx, a.ID, UpdateInput{Status: &confirmed, AdminNotes: &note}, Actor{UserID: uuid.NewString(), Role: model.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, got.ConfirmedAt)
	assert.Equal(t, now, *got.ConfirmedAt)
	assert.Equal(t, "cliente VIP", *got.AdminNotes)
	require.NotNil(t, got.ModifiedBy)

	f.svc.Drain()
	_, admin := f.notifier.counts()
	assert.Equal(t, 1, admin)
	assert.Equal(t, outbox.AppointmentConfirmed, f.store.eventTypes()[1])
}

func TestCreateWithIDUpdates(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)

	notes := "trocar horário"
	caller := Actor{UserID: a.UserID, Role: model.RoleUser}
	got, err := f.svc.Create(context.Background(), CreateInput{ID: a.ID, StartTime: at(14, 0), EndTime: at(14, 30), Notes: &notes}, caller)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, *at(14, 0), got.StartTime)
	appts, _ := f.store.counts()
	assert.Equal(t, 1, appts)
}

func TestCreateWithIDRequiresCaller(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), CreateInput{ID: a.ID, Status: model.StatusCanceled}, Actor{})
	requireKind(t, err, apperr.KindUnauthorized)
	assert.Equal(t, model.StatusPending, f.store.appointment(a.ID).Status)
}

func TestUpdateCannotCancelFinished(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()
	admin := Actor{UserID: uuid.NewString(), Role: model.RoleAdmin}

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, a.ID, UpdateInput{Status: ptr(model.StatusCompleted)}, admin)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, a.ID, UpdateInput{Status: ptr(model.StatusCanceled)}, admin)
	requireKind(t, err, apperr.KindConflict)
	_, err = f.svc.Cancel(ctx, a.ID, admin)
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, model.StatusCompleted, f.store.appointment(a.ID).Status)
}

func TestBookingLocksAndChecksUser(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()

	active := f.store.addUser("11900000001", true)
	_, err := f.svc.Create(ctx, CreateInput{UserID: active.ID, SpecialtyID: spec.ID, StartTime: at(10, 0), EndTime: at(10, 30)}, Actor{})
	require.NoError(t, err)
	assert.Contains(t, f.store.lockedKeys(), "user:"+active.ID)

	removed := f.store.addUser("11900000002", false)
	_, err = f.svc.Create(ctx, CreateInput{UserID: removed.ID, SpecialtyID: spec.ID, StartTime: at(11, 0), EndTime: at(11, 30)}, Actor{})
	requireKind(t, err, apperr.KindNotFound)
	_, err = f.book(spec, removed.Phone, at(11, 0), at(11, 30))
	requireKind(t, err, apperr.KindNotFound)
	assert.Contains(t, f.store.lockedKeys(), "user:"+removed.ID)
}

func TestDeleteIsSoft(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, a.ID, Actor{UserID: "admin-1"}))

	got := f.store.appointment(a.ID)
	assert.False(t, got.Enabled)
	assert.False(t, got.Active)
	assert.Equal(t, model.StatusPending, got.Status)

	_, err = f.book(spec, "11900000002", at(10, 0), at(10, 30))
	require.NoError(t, err)
}

func TestScheduleRules(t *testing.T) {
	f := newFixture(t, staticConfig{cfg: model.DefaultConfig(), ok: true})
	spec := f.store.addSpecialty("Manicure", 5)
	ctx := context.Background()
	admin := Actor{UserID: uuid.NewString(), Role: model.RoleAdmin}

	sunday := func(h int) *time.Time {
		t := time.Date(2030, 1, 13, h, 0, 0, 0, time.UTC)
		return &t
	}

	cases := []struct {
		name       string
		start, end *time.Time
		actor      Actor
		want       string
	}{
		{"past", ptr(now.Add(-time.Hour)), ptr(now.Add(-30 * time.Minute)), Actor{}, "Não é possível agendar no passado"},
		{"closed day", sunday(10), sunday(11), Actor{}, "Dia não disponível para agendamento"},
		{"before opening", at(7, 30), at(8, 0), Actor{}, "Horário fora do expediente (08:00 às 18:00)"},
		{"after closing", at(17, 45), at(18, 15), Actor{}, "Horário fora do expediente (08:00 às 18:00)"},
		{"beyond horizon", ptr(now.AddDate(0, 2, 1)), ptr(now.AddDate(0, 2, 1).Add(time.Hour)), admin, "Agendamentos só podem ser feitos com até 30 dias de antecedência"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, CreateInput{UserID: "11900000001", SpecialtyID: spec.ID, StartTime: tc.start, EndTime: tc.end}, tc.actor)
			e := requireKind(t, err, apperr.KindBadRequest)
			assert.Equal(t, tc.want, e.Msg)
		})
	}

	_, err := f.svc.Create(ctx, CreateInput{UserID: "11900000001", SpecialtyID: spec.ID, StartTime: sunday(10), EndTime: sunday(11)}, admin)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateInput{UserID: "11900000001", SpecialtyID: spec.ID, StartTime: at(17, 30), EndTime: at(18, 0)}, Actor{})
	require.NoError(t, err)
}

func TestSameWindowSkipsScheduleRules(t *testing.T) {
	clock := now
	f := newFixtureWithClock(t, staticConfig{cfg: model.DefaultConfig(), ok: true}, func() time.Time { return clock })
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()
	admin := Actor{UserID: uuid.NewString(), Role: model.RoleAdmin}

	a, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)

	sunday := time.Date(2030, 1, 13, 10, 0, 0, 0, time.UTC)
	b, err := f.svc.Create(ctx, CreateInput{UserID: "11900000002", SpecialtyID: spec.ID, StartTime: &sunday, EndTime: ptr(sunday.Add(30 * time.Minute))}, admin)
	require.NoError(t, err)
	client := Actor{UserID: b.UserID, Role: model.RoleUser}
	notes := "mesmo horário"
	_, err = f.svc.Update(ctx, b.ID, UpdateInput{StartTime: &sunday, EndTime: ptr(sunday.Add(30 * time.Minute)), Notes: &notes}, client)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, b.ID, UpdateInput{StartTime: ptr(sunday.Add(time.Hour)), EndTime: ptr(sunday.Add(90 * time.Minute))}, client)
	e := requireKind(t, err, apperr.KindBadRequest)
	assert.Equal(t, "Dia não disponível para agendamento", e.Msg)

	clock = time.Date(2030, 1, 7, 11, 0, 0, 0, time.UTC)
	got, err := f.svc.Update(ctx, a.ID, UpdateInput{StartTime: at(10, 0), EndTime: at(10, 30), Status: ptr(model.StatusCompleted)}, admin)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	_, err = f.svc.Update(ctx, a.ID, UpdateInput{StartTime: at(10, 15), EndTime: at(10, 45)}, admin)
	e = requireKind(t, err, apperr.KindBadRequest)
	assert.Equal(t, "Não é possível agendar no passado", e.Msg)
}

func TestApplyReply(t *testing.T) {
	f := newFixture(t, nil)
	spec := f.store.addSpecialty("Manicure", 2)
	ctx := context.Background()

	later, err := f.book(spec, "11900000001", at(15, 0), at(15, 30))
	require.NoError(t, err)
	first, err := f.book(spec, "11900000001", at(10, 0), at(10, 30))
	require.NoError(t, err)

	got, err := f.svc.ApplyReply(ctx, "5511900000001@c.us", true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	require.NotNil(t, got.ConfirmedAt)

	got, err = f.svc.ApplyReply(ctx, "5511900000001", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, model.StatusCanceled, got.Status)

	got, err = f.svc.ApplyReply(ctx, "11 90000-0001", true)
	require.NoError(t, err)
	assert.Equal(t, later.ID, got.ID)

	_, err = f.svc.ApplyReply(ctx, "11988887777", true)
	e := requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, "Nenhum agendamento encontrado", e.Msg)
}

func TestAvailability(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.WorkStartHour, cfg.WorkEndHour = 9, 11
	f := newFixture(t, staticConfig{cfg: cfg, ok: true})
	spec := f.store.addSpecialty("Manicure", 1)
	ctx := context.Background()

	_, err := f.book(spec, "11900000001", at(9, 30), at(10, 0))
	require.NoError(t, err)

	slots, err := f.svc.Availability(ctx, spec.ID, *at(0, 0))
	require.NoError(t, err)
	var starts []string
	for _, s := range slots {
		starts = append(starts, s.Start.Format("15:04"))
	}
	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, starts)

	slots, err = f.svc.Availability(ctx, spec.ID, time.Date(2030, 1, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestConcurrentCreatesNeverExceedCapacity(t *testing.T) {
	f := newFixture(t, nil)
	const capacity, callers = 3, 24
	spec := f.store.addSpecialty("Coloração", capacity)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted, rejected := 0, 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := at(10, i%3*5)
			end := at(11, 0)
			_, err := f.book(spec, fmt.Sprintf("119%08d", i), start, end)
			mu.Lock()
			defer mu.Unlock()
			switch apperr.KindOf(err) {
			case apperr.KindConflict:
				rejected++
			default:
				if err == nil {
					admitted++
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, capacity, admitted)
	assert.Equal(t, callers-capacity, rejected)
	occupying, err := f.store.Occupying(context.Background(), spec.ID, *at(10, 0), *at(11, 0))
	require.NoError(t, err)
	assert.Len(t, occupying, capacity)
}

func ptr[T any](v T) *T {
	return &v
}
