package handlers

import (
	"errors"
	"net/http"

	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/filter"
)

const msgInternal = "Erro interno do servidor"

type paginate struct {
	Total int `json:"total"`
}

type single struct {
	Data     any      `json:"data"`
	Paginate paginate `json:"paginate"`
}

type pagination struct {
	Total     int `json:"total"`
	Page      int `json:"page"`
	TotalPage int `json:"totalPage"`
}

type listPage struct {
	Data      any        `json:"data"`
	Paginacao pagination `json:"paginacao"`
}

type listBody struct {
	Data listPage `json:"data"`
}

type message struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeOne(w http.ResponseWriter, status int, v any) {
	httpx.WriteJSON(w, status, single{Data: v, Paginate: paginate{Total: 1}})
}

func writeMany[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	httpx.WriteJSON(w, http.StatusOK, single{Data: items, Paginate: paginate{Total: len(items)}})
}

func writeList[T any](w http.ResponseWriter, items []T, total int, page filter.Page) {
	if items == nil {
		items = []T{}
	}
	httpx.WriteJSON(w, http.StatusOK, listBody{Data: listPage{
		Data: items,
		Paginacao: pagination{
			Total:     total,
			Page:      page.Number,
			TotalPage: page.TotalPages(total),
		},
	}})
}

// writeErr maps the service error taxonomy onto HTTP statuses.
func (h *API) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		if errors.Is(err, filter.ErrInvalid) {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.ErrorContext(r.Context(), "request failed",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	switch e.Kind {
	case apperr.KindBadRequest:
		httpx.WriteError(w, http.StatusBadRequest, e.Msg)
	case apperr.KindUnauthorized:
		httpx.WriteError(w, http.StatusUnauthorized, e.Msg)
	case apperr.KindForbidden:
		httpx.WriteError(w, http.StatusForbidden, e.Msg)
	case apperr.KindNotFound:
		httpx.WriteError(w, http.StatusNotFound, e.Msg)
	case apperr.KindConflict, apperr.KindDeleteBlocked:
		httpx.WriteErrorMessage(w, http.StatusConflict, e.Msg, e.Message)
	case apperr.KindTransient:
		h.Logger.WarnContext(r.Context(), "transient failure",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		httpx.WriteError(w, http.StatusServiceUnavailable, e.Msg)
	default:
		h.Logger.ErrorContext(r.Context(), "request failed",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, msgInternal)
	}
}

func (h *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return false
	}
	return true
}
