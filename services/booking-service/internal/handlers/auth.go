package handlers

import (
	"context"
	"net/http"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

type ctxKey int

const ctxKeyActor ctxKey = iota

func withActor(ctx context.Context, a booking.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

// ActorFrom returns the authenticated caller, or the zero Actor for anonymous requests.
func ActorFrom(ctx context.Context) booking.Actor {
	a, _ := ctx.Value(ctxKeyActor).(booking.Actor)
	return a
}

func (h *API) parseToken(r *http.Request) (booking.Actor, bool, error) {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return booking.Actor{}, false, nil
	}
	claims, err := h.Signer.Parse(token)
	if err != nil {
		return booking.Actor{}, true, err
	}
	return booking.Actor{UserID: claims.UserID, Role: model.Role(claims.Role)}, true, nil
}

func (h *API) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, present, err := h.parseToken(r)
		if !present {
			httpx.WriteError(w, http.StatusUnauthorized, "Token não fornecido")
			return
		}
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		next(w, r.WithContext(withActor(r.Context(), actor)))
	}
}

func (h *API) admin(next http.HandlerFunc) http.HandlerFunc {
	return h.authed(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFrom(r.Context()).IsAdmin() {
			httpx.WriteError(w, http.StatusForbidden, "Acesso negado. Apenas administradores.")
			return
		}
		next(w, r)
	})
}

// optional attaches the caller when a valid token is sent and otherwise serves anonymously.
func (h *API) optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if actor, present, err := h.parseToken(r); present && err == nil {
			r = r.WithContext(withActor(r.Context(), actor))
		}
		next(w, r)
	}
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  model.UserSummary `json:"user"`
}

type registerRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type userResponse struct {
	User model.UserSummary `json:"user"`
}

func (h *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.Users.Authenticate(r.Context(), req.Phone, req.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	token, err := h.Signer.Sign(user.ID, user.Phone, string(user.Role))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginResponse{Token: token, User: user.Summary()})
}

func (h *API) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, created, err := h.Users.Register(r.Context(), req.Phone, req.Name)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, userResponse{User: user.Summary()})
}
