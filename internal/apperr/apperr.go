package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind: Motorun dışarıya verdiği kapalı hata sınıflandırması.
type Kind string

const (
	KindNotFound                Kind = "not_found"
	KindValidationFailed        Kind = "validation_failed"
	KindPreconditionFailed      Kind = "precondition_failed"
	KindConflictingState        Kind = "conflicting_state"
	KindCollaboratorUnavailable Kind = "collaborator_unavailable"
)

type Error struct {
	Kind    Kind
	Message string // kullanıcıya gösterilebilir mesaj
	Err     error  // altta yatan hata (teşhis için korunur)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidationFailed, Message: msg}
}

func Precondition(msg string) *Error {
	return &Error{Kind: KindPreconditionFailed, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflictingState, Message: msg}
}

// Collaborator: Veritabanı / kimlik sağlayıcı hatası. Alttaki mesaj teşhis
// için korunur ama sınıf tek tipe indirgenir.
func Collaborator(msg string, err error) *Error {
	return &Error{Kind: KindCollaboratorUnavailable, Message: msg, Err: err}
}

// ToFiber: Hata sınıfını HTTP durum koduna çevirir. Handler sınırında kullanılır.
func ToFiber(err error) error {
	var ae *Error
	if !errors.As(err, &ae) {
		return fiber.NewError(fiber.StatusInternalServerError, "Beklenmeyen sunucu hatası")
	}
	switch ae.Kind {
	case KindNotFound:
		return fiber.NewError(fiber.StatusNotFound, ae.Message)
	case KindValidationFailed:
		return fiber.NewError(fiber.StatusBadRequest, ae.Message)
	case KindPreconditionFailed:
		return fiber.NewError(fiber.StatusUnprocessableEntity, ae.Message)
	case KindConflictingState:
		return fiber.NewError(fiber.StatusConflict, ae.Message)
	default:
		return fiber.NewError(fiber.StatusServiceUnavailable, ae.Message)
	}
}
