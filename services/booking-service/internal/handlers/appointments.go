package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type appointmentRequest struct {
	ID          string                   `json:"id"`
	UserID      string                   `json:"userId"`
	UserName    string                   `json:"userName"`
	SpecialtyID *string                  `json:"specialtyId"`
	StartTime   *time.Time               `json:"startTime"`
	EndTime     *time.Time               `json:"endTime"`
	Status      *model.AppointmentStatus `json:"status"`
	Notes       *string                  `json:"notes"`
	AdminNotes  *string                  `json:"adminNotes"`
}

func (req appointmentRequest) create(actor booking.Actor) booking.CreateInput {
	in := booking.CreateInput{
		ID:         strings.TrimSpace(req.ID),
		UserID:     strings.TrimSpace(req.UserID),
		UserName:   strings.TrimSpace(req.UserName),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Notes:      req.Notes,
		AdminNotes: req.AdminNotes,
	}
	if in.UserID == "" {
		in.UserID = actor.UserID
	}
	if req.SpecialtyID != nil {
		in.SpecialtyID = strings.TrimSpace(*req.SpecialtyID)
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	return in
}

func (req appointmentRequest) update() booking.UpdateInput {
	return booking.UpdateInput{
		SpecialtyID: req.SpecialtyID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      req.Status,
		Notes:       req.Notes,
		AdminNotes:  req.AdminNotes,
	}
}

func (h *API) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor := ActorFrom(r.Context())
	appt, err := h.Appointments.Create(r.Context(), req.create(actor), actor)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	status := http.StatusCreated
	if req.ID != "" {
		status = http.StatusOK
	}
	writeOne(w, status, appt)
}

func (h *API) updateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		id = req.ID
	}
	appt, err := h.Appointments.Update(r.Context(), id, req.update(), ActorFrom(r.Context()))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusOK, appt)
}

func (h *API) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	appt, err := h.Appointments.Cancel(r.Context(), mux.Vars(r)["id"], ActorFrom(r.Context()))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusOK, appt)
}

func (h *API) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.Appointments.Delete(r.Context(), mux.Vars(r)["id"], ActorFrom(r.Context())); err != nil {
		h.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *API) getAppointment(w http.ResponseWriter, r *http.Request) {
	appt, err := h.Appointments.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusOK, appt)
}

func (h *API) listAppointments(w http.ResponseWriter, r *http.Request) {
	expr, page, err := listParams(r, model.AppointmentSchema)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	items, total, err := h.Appointments.List(r.Context(), expr, page)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeList(w, items, total, page)
}

func (h *API) publicAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawFrom, rawTo := strings.TrimSpace(q.Get("startDate")), strings.TrimSpace(q.Get("endDate"))
	if rawFrom == "" || rawTo == "" {
		httpx.WriteError(w, http.StatusBadRequest, "startDate e endDate são obrigatórios")
		return
	}
	from, _, ok := parseInstant(rawFrom, h.Location)
	to, dateOnly, ok2 := parseInstant(rawTo, h.Location)
	if !ok || !ok2 {
		httpx.WriteError(w, http.StatusBadRequest, "startDate e endDate devem ser datas válidas")
		return
	}
	if dateOnly {
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	items, err := h.Appointments.ListPublic(r.Context(), from, to)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeMany(w, items)
}

func (h *API) availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	specialtyID := strings.TrimSpace(q.Get("specialtyId"))
	if specialtyID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "specialtyId é obrigatório")
		return
	}
	day, _, ok := parseInstant(strings.TrimSpace(q.Get("date")), h.Location)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "date deve ser uma data válida")
		return
	}
	slots, err := h.Appointments.Availability(r.Context(), specialtyID, day)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeMany(w, slots)
}

// parseInstant accepts RFC 3339 timestamps or YYYY-MM-DD dates, the latter at
// midnight in loc. dateOnly reports which form was used.
func parseInstant(raw string, loc *time.Location) (t time.Time, dateOnly bool, ok bool) {
	if raw == "" {
		return time.Time{}, false, false
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return t, true, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, true
	}
	return time.Time{}, false, false
}

func listParams(r *http.Request, s model.Schema) (filter.Expr, filter.Page, error) {
	q := r.URL.Query()
	page, err := filter.PageFromRequest(r.Header, q, s)
	if err != nil {
		return nil, filter.Page{}, err
	}
	expr, err := filter.Parse(s, q)
	if err != nil {
		return nil, filter.Page{}, err
	}
	return expr, page, nil
}
