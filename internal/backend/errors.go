package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation against the backend.
type Kind int

const (
	// KindValidation marks a local precondition failure. No request was sent.
	KindValidation Kind = iota
	// KindAuthExpired marks a 401 from any endpoint. Handled globally by the
	// session gate, never by the calling screen.
	KindAuthExpired
	// KindRemote marks a non-401 4xx/5xx rejection from the backend.
	KindRemote
	// KindNetwork marks a request that produced no response.
	KindNetwork
)

// Error is the single shape every call site maps transport failures into.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("backend error (status %d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a local validation failure.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Validationf builds a formatted local validation failure.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind; unknown errors classify as network failures.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindNetwork
}

// IsAuthExpired reports whether err is a 401 interception.
func IsAuthExpired(err error) bool {
	return err != nil && KindOf(err) == KindAuthExpired
}

// IsValidation reports whether err is a local precondition failure.
func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}

// UserMessage returns the text to surface to the operator.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) {
		if be.Kind == KindNetwork && be.Message == "" {
			return "No se pudo contactar al servidor. Intente de nuevo."
		}
		return be.Error()
	}
	return err.Error()
}
