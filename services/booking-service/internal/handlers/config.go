package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

func (h *API) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Settings.Get(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusOK, cfg)
}

func (h *API) updateConfig(w http.ResponseWriter, r *http.Request) {
	var patch model.ConfigPatch
	if !h.decode(w, r, &patch) {
		return
	}
	cfg, err := h.Settings.Update(r.Context(), patch, ActorFrom(r.Context()).UserID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusOK, cfg)
}

func (h *API) upsertConfig(w http.ResponseWriter, r *http.Request) {
	var patch model.ConfigPatch
	if !h.decode(w, r, &patch) {
		return
	}
	cfg, err := h.Settings.Upsert(r.Context(), patch, ActorFrom(r.Context()).UserID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusOK, cfg)
}

func (h *API) monthlyReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, ok := optionalInt(q.Get("year"))
	month, ok2 := optionalInt(q.Get("month"))
	if !ok || !ok2 {
		httpx.WriteError(w, http.StatusBadRequest, "year e month devem ser números")
		return
	}
	report, err := h.Reports.Monthly(r.Context(), year, month)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, report)
}

func optionalInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}
