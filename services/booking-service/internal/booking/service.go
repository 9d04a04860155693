// Package booking is the appointment admission workflow: it decides whether a new or
// changed appointment may occupy its window and persists the outcome atomically.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/salonbook/libs/db"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/admission"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/whatsapp"
)

const tracerName = "booking-service/booking"

const (
	msgAppointmentNotFound = "Agendamento não encontrado"
	msgSpecialtyNotFound   = "Especialidade não encontrada"
	msgUserNotFound        = "Usuário não encontrado"
)

// ReplyWindow is how far ahead ApplyReply looks for the appointment a client answers about.
const ReplyWindow = 48 * time.Hour

// Notifier sends the client-facing messages that follow a committed booking.
type Notifier interface {
	SendAppointmentConfirmation(ctx context.Context, n model.Notice) bool
	SendAdminConfirmation(ctx context.Context, n model.Notice) bool
}

// ConfigSource returns the scheduling configuration; ok is false when none was saved yet.
type ConfigSource interface {
	Current(ctx context.Context) (cfg model.Config, ok bool, err error)
}

// Actor is the authenticated caller, if any.
type Actor struct {
	UserID string
	Role   model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

func (a Actor) modifiedBy() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

type CreateInput struct {
	// ID turns the create into an update of that appointment.
	ID string
	// UserID is a user id or, for clients booking by phone, the phone number.
	UserID      string
	UserName    string
	SpecialtyID string
	StartTime   *time.Time
	EndTime     *time.Time
	Status      model.AppointmentStatus
	Notes       *string
	AdminNotes  *string
}

// UpdateInput holds the fields to change; nil keeps the current value.
type UpdateInput struct {
	SpecialtyID *string
	StartTime   *time.Time
	EndTime     *time.Time
	Status      *model.AppointmentStatus
	Notes       *string
	AdminNotes  *string
}

func (in UpdateInput) reschedules() bool {
	return in.StartTime != nil || in.EndTime != nil || in.SpecialtyID != nil
}

type Options struct {
	Location      *time.Location
	Now           func() time.Time
	NotifyTimeout time.Duration
	Metrics       *metrics.Metrics
}

type Service struct {
	store    Store
	config   ConfigSource
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics

	loc           *time.Location
	now           func() time.Time
	notifyTimeout time.Duration

	wg sync.WaitGroup
}

func NewService(store Store, config ConfigSource, notifier Notifier, logger *slog.Logger, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 30 * time.Second
	}
	return &Service{
		store:         store,
		config:        config,
		notifier:      notifier,
		logger:        logger,
		metrics:       opts.Metrics,
		loc:           opts.Location,
		now:           opts.Now,
		notifyTimeout: opts.NotifyTimeout,
	}
}

// Create admits and persists a new appointment. The confirmation message is sent after
// commit and never affects the result. An input carrying an id is an update and needs
// an authenticated actor.
func (s *Service) Create(ctx context.Context, in CreateInput, actor Actor) (appt model.Appointment, err error) {
	if strings.TrimSpace(in.ID) != "" {
		if actor.UserID == "" {
			return model.Appointment{}, apperr.Unauthorized("Token não fornecido")
		}
		return s.Update(ctx, in.ID, in.asUpdate(), actor)
	}

	ctx, span := otelx.Start(ctx, tracerName, "booking.Create", attribute.String("specialty_id", in.SpecialtyID))
	defer func() { otelx.End(span, err) }()

	if in.StartTime == nil || in.EndTime == nil {
		return model.Appointment{}, apperr.BadRequest("startTime e endTime são obrigatórios")
	}
	w := admission.Window{Start: *in.StartTime, End: *in.EndTime}
	if !w.Valid() {
		return model.Appointment{}, apperr.BadRequest("startTime deve ser anterior a endTime")
	}
	in.UserID = strings.TrimSpace(in.UserID)
	if in.SpecialtyID == "" || in.UserID == "" {
		return model.Appointment{}, apperr.BadRequest("specialtyId e userId são obrigatórios")
	}
	status := in.Status
	if status == "" {
		status = model.StatusPending
	}
	if !status.Valid() {
		return model.Appointment{}, apperr.BadRequest("Status inválido")
	}
	if !isID(in.SpecialtyID) {
		return model.Appointment{}, apperr.NotFound(msgSpecialtyNotFound)
	}
	if err := s.checkSchedule(ctx, w, actor); err != nil {
		return model.Appointment{}, err
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		user, err := s.resolveUser(ctx, tx, in.UserID, strings.TrimSpace(in.UserName))
		if err != nil {
			return err
		}
		if err := tx.Lock(ctx, specialtyKey(in.SpecialtyID)); err != nil {
			return err
		}
		spec, err := tx.BookableSpecialty(ctx, in.SpecialtyID)
		if err != nil {
			return notFound(err, msgSpecialtyNotFound)
		}
		if err := s.admit(ctx, tx, "create", spec, admission.Query{SpecialtyID: spec.ID, Window: w}); err != nil {
			return err
		}

		a := model.Appointment{
			UserID:      user.ID,
			SpecialtyID: spec.ID,
			StartTime:   w.Start,
			EndTime:     w.End,
			Status:      status,
			Notes:       in.Notes,
			AdminNotes:  in.AdminNotes,
			ModifiedBy:  actor.modifiedBy(),
		}
		if status == model.StatusConfirmed {
			now := s.now()
			a.ConfirmedAt = &now
		}
		if err := tx.InsertAppointment(ctx, &a); err != nil {
			return err
		}
		us, ss := user.Summary(), spec.Summary()
		a.User, a.Specialty = &us, &ss

		if err := s.emit(ctx, tx, outbox.AppointmentBooked, a); err != nil {
			return err
		}
		appt = a
		return nil
	})
	if err != nil {
		return model.Appointment{}, apperr.Classify(err)
	}

	s.logger.InfoContext(ctx, "appointment booked",
		"appointment_id", appt.ID, "specialty_id", appt.SpecialtyID, "start_time", appt.StartTime)
	if s.notifier != nil {
		s.notify(ctx, "appointment_confirmation", noticeOf(appt), s.notifier.SendAppointmentConfirmation)
	}
	return appt, nil
}

func (in CreateInput) asUpdate() UpdateInput {
	u := UpdateInput{
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Notes:      in.Notes,
		AdminNotes: in.AdminNotes,
	}
	if in.SpecialtyID != "" {
		id := in.SpecialtyID
		u.SpecialtyID = &id
	}
	if in.Status != "" {
		st := in.Status
		u.Status = &st
	}
	return u
}

// Update applies a partial change. Moving the window or the specialty, or bringing a
// freed appointment back into an occupying status, goes through admission again with
// the appointment itself excluded from the count.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, actor Actor) (appt model.Appointment, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Appointment{}, apperr.BadRequest("ID is required for update.")
	}

	ctx, span := otelx.Start(ctx, tracerName, "booking.Update", attribute.String("appointment_id", id))
	defer func() { otelx.End(span, err) }()

	if !isID(id) {
		return model.Appointment{}, apperr.NotFound(msgAppointmentNotFound)
	}
	if in.Status != nil && !in.Status.Valid() {
		return model.Appointment{}, apperr.BadRequest("Status inválido")
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.AppointmentForUpdate(ctx, id)
		if err != nil {
			return notFound(err, msgAppointmentNotFound)
		}

		next := cur
		if in.SpecialtyID != nil {
			next.SpecialtyID = *in.SpecialtyID
		}
		if in.StartTime != nil {
			next.StartTime = *in.StartTime
		}
		if in.EndTime != nil {
			next.EndTime = *in.EndTime
		}
		if in.Status != nil {
			next.Status = *in.Status
		}
		if next.Status == model.StatusCanceled && cur.Status.Terminal() {
			return apperr.Conflict("Agendamento não pode ser cancelado", fmt.Sprintf("Status atual: %s", cur.Status))
		}
		if in.Notes != nil {
			next.Notes = in.Notes
		}
		if in.AdminNotes != nil {
			next.AdminNotes = in.AdminNotes
		}
		if by := actor.modifiedBy(); by != nil {
			next.ModifiedBy = by
		}

		w := admission.Window{Start: next.StartTime, End: next.EndTime}
		reoccupies := !cur.Status.Occupies() && next.Status.Occupies()
		if in.reschedules() || reoccupies {
			if !w.Valid() {
				return apperr.BadRequest("startTime deve ser anterior a endTime")
			}
			if !isID(next.SpecialtyID) {
				return apperr.NotFound(msgSpecialtyNotFound)
			}
			if !next.StartTime.Equal(cur.StartTime) || !next.EndTime.Equal(cur.EndTime) {
				if err := s.checkSchedule(ctx, w, actor); err != nil {
					return err
				}
			}
			if err := tx.Lock(ctx, specialtyKey(cur.SpecialtyID), specialtyKey(next.SpecialtyID)); err != nil {
				return err
			}
			spec, err := tx.BookableSpecialty(ctx, next.SpecialtyID)
			if err != nil {
				return notFound(err, msgSpecialtyNotFound)
			}
			if next.Status.Occupies() {
				q := admission.Query{SpecialtyID: spec.ID, Window: w, ExcludeID: cur.ID}
				if err := s.admit(ctx, tx, "update", spec, q); err != nil {
					return err
				}
			}
			ss := spec.Summary()
			next.Specialty = &ss
		}

		if next.Status != cur.Status {
			now := s.now()
			switch next.Status {
			case model.StatusConfirmed:
				next.ConfirmedAt = &now
			case model.StatusCanceled:
				next.CanceledAt = &now
			}
		}
		if err := tx.UpdateAppointment(ctx, &next); err != nil {
			return err
		}
		if err := s.emit(ctx, tx, updateEvent(cur, next), next); err != nil {
			return err
		}
		appt = next
		return nil
	})
	if err != nil {
		return model.Appointment{}, apperr.Classify(err)
	}

	s.logger.InfoContext(ctx, "appointment updated", "appointment_id", appt.ID, "status", appt.Status)
	if in.Status != nil && *in.Status == model.StatusConfirmed && s.notifier != nil {
		s.notify(ctx, "admin_confirmation", noticeOf(appt), s.notifier.SendAdminConfirmation)
	}
	return appt, nil
}

func updateEvent(cur, next model.Appointment) string {
	switch {
	case !cur.StartTime.Equal(next.StartTime) || !cur.EndTime.Equal(next.EndTime) || cur.SpecialtyID != next.SpecialtyID:
		return outbox.AppointmentRescheduled
	case cur.Status != next.Status && next.Status == model.StatusConfirmed:
		return outbox.AppointmentConfirmed
	case cur.Status != next.Status && next.Status == model.StatusCanceled:
		return outbox.AppointmentCanceled
	default:
		return outbox.AppointmentUpdated
	}
}

// Cancel frees the appointment's capacity. Canceling twice returns the row as it was
// after the first cancel.
func (s *Service) Cancel(ctx context.Context, id string, actor Actor) (appt model.Appointment, err error) {
	ctx, span := otelx.Start(ctx, tracerName, "booking.Cancel", attribute.String("appointment_id", id))
	defer func() { otelx.End(span, err) }()

	if !isID(id) {
		return model.Appointment{}, apperr.NotFound(msgAppointmentNotFound)
	}
	err = s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.AppointmentForUpdate(ctx, id)
		if err != nil {
			return notFound(err, msgAppointmentNotFound)
		}
		if cur.Status == model.StatusCanceled {
			appt = cur
			return nil
		}
		if cur.Status.Terminal() {
			return apperr.Conflict("Agendamento não pode ser cancelado", fmt.Sprintf("Status atual: %s", cur.Status))
		}

		now := s.now()
		cur.Status = model.StatusCanceled
		cur.CanceledAt = &now
		if by := actor.modifiedBy(); by != nil {
			cur.ModifiedBy = by
		}
		if err := tx.UpdateAppointment(ctx, &cur); err != nil {
			return err
		}
		if err := s.emit(ctx, tx, outbox.AppointmentCanceled, cur); err != nil {
			return err
		}
		appt = cur
		return nil
	})
	if err != nil {
		return model.Appointment{}, apperr.Classify(err)
	}
	return appt, nil
}

// Delete soft-deletes the appointment; its status is left as is.
func (s *Service) Delete(ctx context.Context, id string, actor Actor) (err error) {
	ctx, span := otelx.Start(ctx, tracerName, "booking.Delete", attribute.String("appointment_id", id))
	defer func() { otelx.End(span, err) }()

	if !isID(id) {
		return apperr.NotFound(msgAppointmentNotFound)
	}
	err = s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.AppointmentForUpdate(ctx, id)
		if err != nil {
			return notFound(err, msgAppointmentNotFound)
		}
		if err := tx.DeleteAppointment(ctx, id, actor.UserID); err != nil {
			return notFound(err, msgAppointmentNotFound)
		}
		cur.Enabled, cur.Active = false, false
		cur.ModifiedBy = actor.modifiedBy()
		return s.emit(ctx, tx, outbox.AppointmentDeleted, cur)
	})
	return apperr.Classify(err)
}

func (s *Service) Get(ctx context.Context, id string) (model.Appointment, error) {
	if !isID(id) {
		return model.Appointment{}, apperr.NotFound(msgAppointmentNotFound)
	}
	a, err := s.store.Appointment(ctx, id)
	if err != nil {
		return model.Appointment{}, apperr.Classify(notFound(err, msgAppointmentNotFound))
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.Appointment, int, error) {
	items, total, err := s.store.Appointments(ctx, expr, page)
	if err != nil {
		if errors.Is(err, filter.ErrInvalid) {
			return nil, 0, apperr.BadRequest(err.Error())
		}
		return nil, 0, apperr.Classify(err)
	}
	return items, total, nil
}

// ListPublic lists the occupied windows starting in [from, to] without client data.
func (s *Service) ListPublic(ctx context.Context, from, to time.Time) ([]model.PublicAppointment, error) {
	if to.Before(from) {
		return nil, apperr.BadRequest("endDate deve ser posterior a startDate")
	}
	items, err := s.store.PublicAppointments(ctx, from, to)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return items, nil
}

// Availability lists the slots of day (in the business timezone) that still admit one
// more appointment of the specialty.
func (s *Service) Availability(ctx context.Context, specialtyID string, day time.Time) ([]admission.Slot, error) {
	if !isID(specialtyID) {
		return nil, apperr.NotFound(msgSpecialtyNotFound)
	}
	spec, err := s.store.BookableSpecialty(ctx, specialtyID)
	if err != nil {
		return nil, apperr.Classify(notFound(err, msgSpecialtyNotFound))
	}
	cfg, ok, err := s.currentConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		cfg = model.DefaultConfig()
	}

	y, m, d := day.In(s.loc).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	if !cfg.WorksOn(midnight.Weekday()) {
		return []admission.Slot{}, nil
	}
	open := midnight.Add(time.Duration(cfg.WorkStartHour) * time.Hour)
	closeAt := midnight.Add(time.Duration(cfg.WorkEndHour) * time.Hour)

	step := time.Duration(cfg.SlotDuration) * time.Minute
	length := time.Duration(spec.AvgDuration) * time.Minute
	if length <= 0 {
		length = step
	}
	existing, err := s.store.Occupying(ctx, spec.ID, open, closeAt)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	slots := admission.OpenSlots(open, closeAt, length, step, spec, existing, s.now())
	if slots == nil {
		slots = []admission.Slot{}
	}
	return slots, nil
}

// ApplyReply confirms or cancels the next appointment of the client writing from phone
// that starts within ReplyWindow.
func (s *Service) ApplyReply(ctx context.Context, phone string, confirm bool) (appt model.Appointment, err error) {
	ctx, span := otelx.Start(ctx, tracerName, "booking.ApplyReply", attribute.Bool("confirm", confirm))
	defer func() { otelx.End(span, err) }()

	variants := whatsapp.PhoneVariants(phone)
	if len(variants) == 0 {
		return model.Appointment{}, apperr.BadRequest("Telefone inválido")
	}
	now := s.now()
	err = s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.NextForPhone(ctx, variants, now, now.Add(ReplyWindow))
		if err != nil {
			return notFound(err, "Nenhum agendamento encontrado")
		}
		next := cur
		event := outbox.AppointmentConfirmed
		if confirm {
			next.Status = model.StatusConfirmed
			next.ConfirmedAt = &now
		} else {
			next.Status = model.StatusCanceled
			next.CanceledAt = &now
			event = outbox.AppointmentCanceled
		}
		by := cur.UserID
		next.ModifiedBy = &by
		if err := tx.UpdateAppointment(ctx, &next); err != nil {
			return err
		}
		if err := s.emit(ctx, tx, event, next); err != nil {
			return err
		}
		appt = next
		return nil
	})
	if err != nil {
		return model.Appointment{}, apperr.Classify(err)
	}
	s.logger.InfoContext(ctx, "client reply applied", "appointment_id", appt.ID, "status", appt.Status)
	return appt, nil
}

// Drain waits for notifications still in flight.
func (s *Service) Drain() {
	s.wg.Wait()
}

// resolveUser returns the enabled client ref names (id or phone), creating it for an
// unknown phone. The user lock is held until commit.
func (s *Service) resolveUser(ctx context.Context, tx Tx, ref, name string) (model.User, error) {
	var user model.User
	var err error
	if isID(ref) {
		if err := tx.Lock(ctx, userKey(ref)); err != nil {
			return model.User{}, err
		}
		user, err = tx.UserByID(ctx, ref)
		if err != nil {
			return model.User{}, notFound(err, msgUserNotFound)
		}
	} else {
		if err := tx.Lock(ctx, "phone:"+ref); err != nil {
			return model.User{}, err
		}
		user, err = tx.UserByPhone(ctx, ref)
		if db.IsNotFound(err) {
			user = model.User{Phone: ref, Role: model.RoleUser}
			if name != "" {
				user.Name = &name
			}
			if err := tx.InsertUser(ctx, &user); err != nil {
				return model.User{}, err
			}
			return user, nil
		}
		if err != nil {
			return model.User{}, err
		}
		if err := tx.Lock(ctx, userKey(user.ID)); err != nil {
			return model.User{}, err
		}
	}
	if !user.Enabled {
		return model.User{}, apperr.NotFound(msgUserNotFound)
	}
	if user.Name == nil && name != "" {
		if err := tx.SetUserName(ctx, user.ID, name); err != nil {
			return model.User{}, err
		}
		user.Name = &name
	}
	return user, nil
}

func (s *Service) admit(ctx context.Context, tx Tx, op string, spec model.Specialty, q admission.Query) error {
	n, err := tx.CountOverlapping(ctx, q)
	if err != nil {
		return err
	}
	d := admission.Decide(n, spec.MaxSimultaneous)
	s.metrics.Admission(op, d.Admitted, n)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("booking.overlap_count", d.Count),
		attribute.Int("booking.max_simultaneous", d.Limit),
		attribute.Bool("booking.admitted", d.Admitted),
	)
	if !d.Admitted {
		s.logger.InfoContext(ctx, "admission rejected",
			"operation", op, "specialty_id", spec.ID, "overlap_count", d.Count, "limit", d.Limit)
		return apperr.CapacityReached(d.Limit)
	}
	return nil
}

func (s *Service) currentConfig(ctx context.Context) (model.Config, bool, error) {
	if s.config == nil {
		return model.Config{}, false, nil
	}
	cfg, ok, err := s.config.Current(ctx)
	if err != nil {
		return model.Config{}, false, apperr.Classify(err)
	}
	return cfg, ok, nil
}

// checkSchedule applies the saved configuration to w. Without a saved configuration
// every window is accepted.
func (s *Service) checkSchedule(ctx context.Context, w admission.Window, actor Actor) error {
	cfg, ok, err := s.currentConfig(ctx)
	if err != nil || !ok {
		return err
	}
	check := admission.ScheduleCheck{Config: cfg, Loc: s.loc, Now: s.now(), BypassHours: actor.IsAdmin()}
	switch err := check.Validate(w); {
	case err == nil:
		return nil
	case errors.Is(err, admission.ErrInPast):
		return apperr.BadRequest("Não é possível agendar no passado")
	case errors.Is(err, admission.ErrBeyondHorizon):
		return apperr.BadRequest(fmt.Sprintf("Agendamentos só podem ser feitos com até %d dias de antecedência", cfg.MaxAdvanceDays))
	case errors.Is(err, admission.ErrClosedDay):
		return apperr.BadRequest("Dia não disponível para agendamento")
	case errors.Is(err, admission.ErrOutsideHours):
		return apperr.BadRequest(fmt.Sprintf("Horário fora do expediente (%02d:00 às %02d:00)", cfg.WorkStartHour, cfg.WorkEndHour))
	default:
		return err
	}
}

func (s *Service) emit(ctx context.Context, tx Tx, eventType string, a model.Appointment) error {
	evt, err := outbox.AppointmentEvent(eventType, a, s.now())
	if err != nil {
		return err
	}
	return tx.Emit(ctx, evt)
}

// notify sends in the background with its own deadline, keeping the caller's trace.
func (s *Service) notify(ctx context.Context, kind string, n model.Notice, send func(context.Context, model.Notice) bool) {
	sc := trace.SpanContextFromContext(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("notification panicked", "kind", kind, "appointment_id", n.AppointmentID, "panic", rec)
			}
		}()
		ctx, cancel := context.WithTimeout(trace.ContextWithSpanContext(context.Background(), sc), s.notifyTimeout)
		defer cancel()
		if !send(ctx, n) {
			s.logger.Warn("notification not sent", "kind", kind, "appointment_id", n.AppointmentID)
		}
	}()
}

func noticeOf(a model.Appointment) model.Notice {
	n := model.Notice{
		AppointmentID:   a.ID,
		Start:           a.StartTime,
		DurationMinutes: int(a.EndTime.Sub(a.StartTime) / time.Minute),
	}
	if a.User != nil {
		n.Phone = a.User.Phone
		if a.User.Name != nil {
			n.Name = *a.User.Name
		}
	}
	if a.Specialty != nil {
		n.Specialty = a.Specialty.Name
		if a.Specialty.AvgDuration > 0 {
			n.DurationMinutes = a.Specialty.AvgDuration
		}
	}
	return n
}

func specialtyKey(id string) string {
	return "specialty:" + id
}

// userKey is shared with catalog.Users.Delete.
func userKey(id string) string {
	return "user:" + id
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
