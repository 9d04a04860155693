package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/reminders"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/whatsapp"
)

const webhookSecretHeader = "X-Webhook-Secret"

func (h *API) whatsappStatus(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Messenger.Status(r.Context()))
}

func (h *API) whatsappInitialize(w http.ResponseWriter, r *http.Request) {
	if err := h.Messenger.Initialize(r.Context()); err != nil {
		h.Logger.ErrorContext(r.Context(), "whatsapp initialize failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Erro ao inicializar WhatsApp")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "WhatsApp inicializado"})
}

func (h *API) whatsappDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.Messenger.Disconnect(r.Context()); err != nil {
		h.Logger.ErrorContext(r.Context(), "whatsapp disconnect failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Erro ao desconectar WhatsApp")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "WhatsApp desconectado com sucesso"})
}

type sendTestRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (h *API) sendTest(w http.ResponseWriter, r *http.Request) {
	var req sendTestRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.Message) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Telefone e mensagem são obrigatórios")
		return
	}
	if !h.Messenger.SendMessage(r.Context(), req.Phone, req.Message, model.MessageTest, "") {
		httpx.WriteError(w, http.StatusInternalServerError, "Falha ao enviar mensagem")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "Mensagem enviada com sucesso"})
}

func (h *API) sendReminders(w http.ResponseWriter, r *http.Request) {
	res, err := h.Reminders.RunReminders(r.Context())
	if errors.Is(err, reminders.ErrRunning) {
		httpx.WriteError(w, http.StatusConflict, "Envio de lembretes já em andamento")
		return
	}
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "reminder run failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Erro ao enviar lembretes")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "Lembretes enviados com sucesso", Data: res})
}

func (h *API) whatsappLogs(w http.ResponseWriter, r *http.Request) {
	expr, page, err := listParams(r, model.WhatsAppLogSchema)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	items, total, err := h.Messenger.Logs(r.Context(), expr, page)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeList(w, items, total, page)
}

func (h *API) logsByPhone(w http.ResponseWriter, r *http.Request) {
	limit, ok := optionalInt(r.URL.Query().Get("limit"))
	if !ok || limit < 0 {
		httpx.WriteError(w, http.StatusBadRequest, "limit deve ser um número")
		return
	}
	items, err := h.Messenger.LogsByPhone(r.Context(), mux.Vars(r)["phone"], limit)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeMany(w, items)
}

func (h *API) logsByAppointment(w http.ResponseWriter, r *http.Request) {
	items, err := h.Messenger.LogsByAppointment(r.Context(), mux.Vars(r)["appointmentId"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeMany(w, items)
}

func (h *API) failedLogs(w http.ResponseWriter, r *http.Request) {
	items, err := h.Messenger.FailedLogs(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeMany(w, items)
}

// webhookEvent is the inbound message notification posted by the WhatsApp gateway.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		From   string `json:"from"`
		Body   string `json:"body"`
		FromMe bool   `json:"fromMe"`
	} `json:"payload"`
}

type webhookResult struct {
	Handled       bool                    `json:"handled"`
	AppointmentID string                  `json:"appointmentId,omitempty"`
	Status        model.AppointmentStatus `json:"status,omitempty"`
}

// webhook applies SIM/NÃO answers to the sender's next appointment. Messages that are
// not answers are acknowledged and ignored so the gateway does not retry them.
func (h *API) webhook(w http.ResponseWriter, r *http.Request) {
	if h.WebhookSecret == "" {
		notFound(w, r)
		return
	}
	got := r.Header.Get(webhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.WebhookSecret)) != 1 {
		httpx.WriteError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	var ev webhookEvent
	if !h.decode(w, r, &ev) {
		return
	}
	if (ev.Event != "" && ev.Event != "message") || ev.Payload.FromMe {
		httpx.WriteJSON(w, http.StatusOK, webhookResult{})
		return
	}
	confirm, ok := whatsapp.ParseReply(ev.Payload.Body)
	phone := whatsapp.Digits(ev.Payload.From)
	if !ok || phone == "" {
		httpx.WriteJSON(w, http.StatusOK, webhookResult{})
		return
	}

	appt, err := h.Appointments.ApplyReply(r.Context(), phone, confirm)
	if apperr.KindOf(err) == apperr.KindNotFound {
		h.Logger.InfoContext(r.Context(), "reply without pending appointment", "phone", phone)
		httpx.WriteJSON(w, http.StatusOK, webhookResult{})
		return
	}
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.Messenger.Reply(r.Context(), phone, confirm)
	httpx.WriteJSON(w, http.StatusOK, webhookResult{Handled: true, AppointmentID: appt.ID, Status: appt.Status})
}
