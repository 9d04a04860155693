// Package apperr is the error taxonomy shared by the booking services and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"

	"github.com/md-rashed-zaman/salonbook/libs/db"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindDeleteBlocked
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindDeleteBlocked:
		return "delete_blocked"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// Error carries a user-facing message and, for capacity conflicts, the limit that was hit.
type Error struct {
	Kind    Kind
	Msg     string
	Message string
	Limit   int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Conflict(msg, message string) *Error {
	return &Error{Kind: KindConflict, Msg: msg, Message: message}
}

// CapacityReached is the conflict returned when a window already holds limit appointments.
func CapacityReached(limit int) *Error {
	return &Error{
		Kind:    KindConflict,
		Msg:     "Horário não disponível",
		Message: fmt.Sprintf("Limite de agendamentos simultâneos atingido (%d)", limit),
		Limit:   limit,
	}
}

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Msg: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

func DeleteBlocked(msg string) *Error {
	return &Error{Kind: KindDeleteBlocked, Msg: msg}
}

func Transient(err error) *Error {
	return &Error{Kind: KindTransient, Msg: "Serviço temporariamente indisponível, tente novamente", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Classify leaves typed errors alone and turns lock, serialization and timeout failures into Transient.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if db.IsTransient(err) {
		return Transient(err)
	}
	return err
}
