package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

func (h *API) publicSpecialties(w http.ResponseWriter, r *http.Request) {
	items, err := h.Specialties.ListPublic(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeMany(w, items)
}

func (h *API) listSpecialties(w http.ResponseWriter, r *http.Request) {
	expr, page, err := listParams(r, model.SpecialtySchema)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	items, total, err := h.Specialties.List(r.Context(), expr, page)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeList(w, items, total, page)
}

func (h *API) getSpecialty(w http.ResponseWriter, r *http.Request) {
	sp, err := h.Specialties.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusOK, sp)
}

func (h *API) createSpecialty(w http.ResponseWriter, r *http.Request) {
	var in catalog.SpecialtyInput
	if !h.decode(w, r, &in) {
		return
	}
	sp, err := h.Specialties.Create(r.Context(), in, ActorFrom(r.Context()).UserID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusCreated, sp)
}

func (h *API) saveSpecialty(w http.ResponseWriter, r *http.Request) {
	var in catalog.SpecialtyInput
	if !h.decode(w, r, &in) {
		return
	}
	sp, err := h.Specialties.Save(r.Context(), in, ActorFrom(r.Context()).UserID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusOK, sp)
}

func (h *API) updateSpecialty(w http.ResponseWriter, r *http.Request) {
	var in catalog.SpecialtyInput
	if !h.decode(w, r, &in) {
		return
	}
	sp, err := h.Specialties.Update(r.Context(), mux.Vars(r)["id"], in, ActorFrom(r.Context()).UserID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusOK, sp)
}

func (h *API) deleteSpecialty(w http.ResponseWriter, r *http.Request) {
	if err := h.Specialties.Delete(r.Context(), mux.Vars(r)["id"], ActorFrom(r.Context()).UserID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *API) listUsers(w http.ResponseWriter, r *http.Request) {
	expr, page, err := listParams(r, model.UserSchema)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	items, total, err := h.Users.List(r.Context(), expr, page)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeList(w, items, total, page)
}

func (h *API) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeOne(w, http.StatusOK, u)
}

func (h *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(r.Context(), mux.Vars(r)["id"], ActorFrom(r.Context()).UserID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
