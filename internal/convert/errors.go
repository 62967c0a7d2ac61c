package convert

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindMissingInput  Kind = "missing_input"
	KindInvalidInput  Kind = "invalid_input"
	KindTooLarge      Kind = "too_large"
	KindMisconfigured Kind = "misconfigured"
	KindTranscription Kind = "transcription_failed"
	KindTranslation   Kind = "translation_failed"
	KindSynthesis     Kind = "synthesis_failed"
	KindInternal      Kind = "internal"
)

// Error is what the orchestrator hands back to the HTTP layer: Message is safe
// to show to the caller, Details carries upstream diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindMissingInput, KindInvalidInput:
		return http.StatusBadRequest
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, message string, err error) *Error {
	e := &Error{Kind: kind, Message: message, Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

func MissingInput(message string) *Error { return newError(KindMissingInput, message, nil) }

func InvalidInput(message string, err error) *Error { return newError(KindInvalidInput, message, err) }

func TooLarge(message string) *Error { return newError(KindTooLarge, message, nil) }

func Internal(err error) *Error {
	return newError(KindInternal, "unexpected error during conversion", err)
}

// AsError classifies any error; unknown ones become KindInternal.
func AsError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return Internal(err)
}
