// Package handlers is the HTTP boundary of the booking service: routing, auth and the
// JSON envelopes the admin panel and the booking site consume.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/admission"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/reminders"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/reports"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/whatsapp"
)

type Appointments interface {
	Create(ctx context.Context, in booking.CreateInput, actor booking.Actor) (model.Appointment, error)
	Update(ctx context.Context, id string, in booking.UpdateInput, actor booking.Actor) (model.Appointment, error)
	Cancel(ctx context.Context, id string, actor booking.Actor) (model.Appointment, error)
	Delete(ctx context.Context, id string, actor booking.Actor) error
	Get(ctx context.Context, id string) (model.Appointment, error)
	List(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.Appointment, int, error)
	ListPublic(ctx context.Context, from, to time.Time) ([]model.PublicAppointment, error)
	Availability(ctx context.Context, specialtyID string, day time.Time) ([]admission.Slot, error)
	ApplyReply(ctx context.Context, phone string, confirm bool) (model.Appointment, error)
}

type Specialties interface {
	ListPublic(ctx context.Context) ([]model.Specialty, error)
	List(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.Specialty, int, error)
	Get(ctx context.Context, id string) (model.Specialty, error)
	Create(ctx context.Context, in catalog.SpecialtyInput, modifiedBy string) (model.Specialty, error)
	Save(ctx context.Context, in catalog.SpecialtyInput, modifiedBy string) (model.Specialty, error)
	Update(ctx context.Context, id string, in catalog.SpecialtyInput, modifiedBy string) (model.Specialty, error)
	Delete(ctx context.Context, id, modifiedBy string) error
}

type Users interface {
	List(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.User, int, error)
	Get(ctx context.Context, id string) (model.User, error)
	Delete(ctx context.Context, id, modifiedBy string) error
	Register(ctx context.Context, phone, name string) (model.User, bool, error)
	Authenticate(ctx context.Context, phone, password string) (model.User, error)
}

type Settings interface {
	Get(ctx context.Context) (model.Config, error)
	Update(ctx context.Context, patch model.ConfigPatch, modifiedBy string) (model.Config, error)
	Upsert(ctx context.Context, patch model.ConfigPatch, modifiedBy string) (model.Config, error)
}

type Reports interface {
	Monthly(ctx context.Context, year, month int) (reports.Report, error)
}

type Messenger interface {
	Status(ctx context.Context) whatsapp.Status
	Initialize(ctx context.Context) error
	Disconnect(ctx context.Context) error
	SendMessage(ctx context.Context, phone, text string, kind model.MessageType, appointmentID string) bool
	Reply(ctx context.Context, phone string, confirmed bool) bool
	Logs(ctx context.Context, expr filter.Expr, page filter.Page) ([]model.WhatsAppLog, int, error)
	LogsByPhone(ctx context.Context, phone string, limit int) ([]model.WhatsAppLog, error)
	LogsByAppointment(ctx context.Context, appointmentID string) ([]model.WhatsAppLog, error)
	FailedLogs(ctx context.Context) ([]model.WhatsAppLog, error)
}

type Reminders interface {
	RunReminders(ctx context.Context) (reminders.Result, error)
}

type Deps struct {
	Appointments  Appointments
	Specialties   Specialties
	Users         Users
	Settings      Settings
	Reports       Reports
	Messenger     Messenger
	Reminders     Reminders
	Signer        *auth.Signer
	WebhookSecret string
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	Location      *time.Location
}

type API struct {
	Deps
}

// NewRouter mounts every route under /api/v1. Unknown paths answer the JSON 404.
func NewRouter(d Deps) *mux.Router {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	h := &API{Deps: d}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(notFound)
	router.Use(h.observe)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.NotFoundHandler = router.NotFoundHandler

	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)

	api.HandleFunc("/specialties/public", h.publicSpecialties).Methods(http.MethodGet)
	api.HandleFunc("/specialties", h.admin(h.listSpecialties)).Methods(http.MethodGet)
	api.HandleFunc("/specialties", h.admin(h.createSpecialty)).Methods(http.MethodPost)
	api.HandleFunc("/specialties", h.admin(h.saveSpecialty)).Methods(http.MethodPut)
	api.HandleFunc("/specialties/{id}", h.admin(h.getSpecialty)).Methods(http.MethodGet)
	api.HandleFunc("/specialties/{id}", h.admin(h.updateSpecialty)).Methods(http.MethodPut)
	api.HandleFunc("/specialties/{id}", h.admin(h.deleteSpecialty)).Methods(http.MethodDelete)

	api.HandleFunc("/users", h.admin(h.listUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.admin(h.getUser)).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.admin(h.deleteUser)).Methods(http.MethodDelete)

	api.HandleFunc("/appointments/public", h.publicAppointments).Methods(http.MethodGet)
	api.HandleFunc("/appointments/availability", h.availability).Methods(http.MethodGet)
	api.HandleFunc("/appointments", h.optional(h.createAppointment)).Methods(http.MethodPost)
	api.HandleFunc("/appointments", h.authed(h.listAppointments)).Methods(http.MethodGet)
	api.HandleFunc("/appointments", h.authed(h.updateAppointment)).Methods(http.MethodPut)
	api.HandleFunc("/appointments/{id}/cancel", h.authed(h.cancelAppointment)).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{id}", h.authed(h.getAppointment)).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id}", h.authed(h.updateAppointment)).Methods(http.MethodPut)
	api.HandleFunc("/appointments/{id}", h.authed(h.deleteAppointment)).Methods(http.MethodDelete)

	api.HandleFunc("/config", h.getConfig).Methods(http.MethodGet)
	api.HandleFunc("/config", h.admin(h.updateConfig)).Methods(http.MethodPut)
	api.HandleFunc("/config", h.admin(h.upsertConfig)).Methods(http.MethodPost)

	api.HandleFunc("/reports/monthly", h.admin(h.monthlyReport)).Methods(http.MethodGet)

	api.HandleFunc("/whatsapp/webhook", h.webhook).Methods(http.MethodPost)
	api.HandleFunc("/whatsapp/status", h.admin(h.whatsappStatus)).Methods(http.MethodGet)
	api.HandleFunc("/whatsapp/initialize", h.admin(h.whatsappInitialize)).Methods(http.MethodPost)
	api.HandleFunc("/whatsapp/disconnect", h.admin(h.whatsappDisconnect)).Methods(http.MethodPost)
	api.HandleFunc("/whatsapp/send-test", h.admin(h.sendTest)).Methods(http.MethodPost)
	api.HandleFunc("/whatsapp/send-reminders", h.admin(h.sendReminders)).Methods(http.MethodPost)
	api.HandleFunc("/whatsapp/logs", h.admin(h.whatsappLogs)).Methods(http.MethodGet)
	api.HandleFunc("/whatsapp/logs/failed", h.admin(h.failedLogs)).Methods(http.MethodGet)
	api.HandleFunc("/whatsapp/logs/phone/{phone}", h.admin(h.logsByPhone)).Methods(http.MethodGet)
	api.HandleFunc("/whatsapp/logs/appointment/{appointmentId}", h.admin(h.logsByAppointment)).Methods(http.MethodGet)

	return router
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteError(w, http.StatusNotFound, "Rota não encontrada")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(p)
}

// observe records request counts and latency by route template.
func (h *API) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		h.Metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
	})
}
