package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/facturacom/webrouter/pkg/routepath"
	"github.com/facturacom/webrouter/pkg/router"
)

// Category represents the type of error.
type Category string

const (
	CategoryRouting    Category = "routing"
	CategoryNavigation Category = "navigation"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
	CategoryInternal   Category = "internal"
)

// Error is a structured error with a code, suggestion and documentation.
type Error struct {
	// Code is a unique error identifier (e.g., "E200").
	Code string

	// Category is the error type (routing, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error

	status int
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Status returns the HTTP status code associated with the error.
func (e *Error) Status() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:     code,
			Category: CategoryInternal,
			Message:  "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		status:   template.Status,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded
	}
	return New(code).Wrap(err)
}

// Classify maps router and routepath errors onto registered codes.
// Unrecognized errors become E500.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var coded *Error
	if stderrors.As(err, &coded) {
		return coded
	}

	switch {
	case stderrors.Is(err, router.ErrNoMatchingRoute):
		return New("E200").Wrap(err)
	case stderrors.Is(err, router.ErrInvalidRoute):
		return New("E201").Wrap(err)
	case stderrors.Is(err, router.ErrUnknownRoute):
		return New("E202").Wrap(err)
	case isPathError(err):
		return New("E203").Wrap(err)
	case stderrors.Is(err, router.ErrInvalidParam):
		return New("E204").Wrap(err)
	case stderrors.Is(err, router.ErrNavigationAborted):
		return New("E205").Wrap(err)
	default:
		return New("E500").Wrap(err)
	}
}

func isPathError(err error) bool {
	for _, target := range []error{
		routepath.ErrInvalidPath,
		routepath.ErrBackslashInPath,
		routepath.ErrNullByteInPath,
		routepath.ErrInvalidPercentEscape,
		routepath.ErrPathEscapesRoot,
		routepath.ErrEncodedSlashInSegment,
	} {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}

// Code returns the code of a coded error, or "" when err carries none.
func Code(err error) string {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
