// Package fault classifies every failure the gateway can surface to a caller.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies a failure class.
type Kind string

const (
	KindUnknown          Kind = "unknown"
	KindInputMissing     Kind = "input_missing"
	KindMalformedImage   Kind = "malformed_image"
	KindTransportFailure Kind = "transport_failure"
	KindContentRefusal   Kind = "content_refusal"
	KindSchemaViolation  Kind = "schema_violation"
	KindParseFailure     Kind = "parse_failure"
	KindNoAudioData      Kind = "no_audio_data"
	KindShareUnavailable Kind = "share_unavailable"
	KindBusy             Kind = "busy"
	KindInvalidState     Kind = "invalid_state"
	KindNotFound         Kind = "not_found"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrInputMissing     = &Error{Kind: KindInputMissing}
	ErrMalformedImage   = &Error{Kind: KindMalformedImage}
	ErrTransportFailure = &Error{Kind: KindTransportFailure}
	ErrContentRefusal   = &Error{Kind: KindContentRefusal}
	ErrSchemaViolation  = &Error{Kind: KindSchemaViolation}
	ErrParseFailure     = &Error{Kind: KindParseFailure}
	ErrNoAudioData      = &Error{Kind: KindNoAudioData}
	ErrShareUnavailable = &Error{Kind: KindShareUnavailable}
	ErrBusy             = &Error{Kind: KindBusy}
	ErrInvalidState     = &Error{Kind: KindInvalidState}
	ErrNotFound         = &Error{Kind: KindNotFound}
)

// Error is a classified failure scoped to a single operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	// Image is set when the failure relates to a supplied image or PDF, so the
	// caller can suggest retrying with pasted text.
	Image bool
	// Status is the upstream HTTP status when one was reported.
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// New builds a classified error.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsImageRelated reports whether err was flagged as relating to a supplied image.
func IsImageRelated(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Image
}

// Message returns the human-readable message of err, falling back to err.Error().
func Message(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
