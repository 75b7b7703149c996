// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// Code classifies an outreach failure.
type Code string

const (
	CodePreconditionFailed   Code = "PRECONDITION_FAILED"
	CodeConfigurationMissing Code = "CONFIGURATION_MISSING"
	CodeAuditWriteFailed     Code = "AUDIT_WRITE_FAILED"
	CodeInvalidRecipient     Code = "INVALID_RECIPIENT"
	CodeCredentialsMissing   Code = "CREDENTIALS_MISSING"
	CodeChannelRejected      Code = "CHANNEL_REJECTED"
	CodeUnexpectedChannel    Code = "UNEXPECTED_CHANNEL_ERROR"
	CodeJobInProgress        Code = "JOB_IN_PROGRESS"
	CodeDonorNotFound        Code = "DONOR_NOT_FOUND"
	CodeBadRequest           Code = "BAD_REQUEST"
)

// OutreachError is the single error type surfaced by the outreach workflow.
type OutreachError struct {
	Code    Code
	Message string
	// Status and Body carry the upstream HTTP response for CHANNEL_REJECTED.
	Status int
	Body   string
	Err    error
}

func (e *OutreachError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%v)", msg, e.Err)
	}
	return msg
}

func (e *OutreachError) Unwrap() error {
	return e.Err
}

// Is matches on Code. A missing configuration is also a failed precondition.
func (e *OutreachError) Is(target error) bool {
	t, ok := target.(*OutreachError)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return t.Code == CodePreconditionFailed && e.Code == CodeConfigurationMissing
}

// Sentinels for errors.Is.
var (
	ErrPreconditionFailed   = &OutreachError{Code: CodePreconditionFailed}
	ErrConfigurationMissing = &OutreachError{Code: CodeConfigurationMissing}
	ErrAuditWriteFailed     = &OutreachError{Code: CodeAuditWriteFailed}
	ErrInvalidRecipient     = &OutreachError{Code: CodeInvalidRecipient}
	ErrCredentialsMissing   = &OutreachError{Code: CodeCredentialsMissing}
	ErrChannelRejected      = &OutreachError{Code: CodeChannelRejected}
	ErrUnexpectedChannel    = &OutreachError{Code: CodeUnexpectedChannel}
	ErrJobInProgress        = &OutreachError{Code: CodeJobInProgress}
	ErrDonorNotFound        = &OutreachError{Code: CodeDonorNotFound}
	ErrBadRequest           = &OutreachError{Code: CodeBadRequest}
)

func NewPreconditionFailed(message string) error {
	return &OutreachError{Code: CodePreconditionFailed, Message: message}
}

func NewConfigurationMissing(field string) error {
	return &OutreachError{Code: CodeConfigurationMissing, Message: field + " is not configured"}
}

func NewAuditWriteFailed(err error) error {
	return &OutreachError{Code: CodeAuditWriteFailed, Message: "failed to write message audit log", Err: err}
}

func NewInvalidRecipient(phone string) error {
	return &OutreachError{Code: CodeInvalidRecipient, Message: fmt.Sprintf("phone number %q has no digits", phone)}
}

func NewCredentialsMissing(message string) error {
	return &OutreachError{Code: CodeCredentialsMissing, Message: message}
}

func NewChannelRejected(status int, message, body string) error {
	return &OutreachError{Code: CodeChannelRejected, Message: message, Status: status, Body: body}
}

func NewUnexpectedChannelError(err error) error {
	return &OutreachError{Code: CodeUnexpectedChannel, Message: "channel call failed", Err: err}
}

func NewJobInProgress(state string) error {
	return &OutreachError{Code: CodeJobInProgress, Message: "an outreach job is already " + state}
}

func NewDonorNotFound(id string) error {
	return &OutreachError{Code: CodeDonorNotFound, Message: fmt.Sprintf("donor with ID %s not found", id)}
}

func NewBadRequest(message string) error {
	return &OutreachError{Code: CodeBadRequest, Message: message}
}

// CodeOf returns the code of the first OutreachError in err's chain, or "" if none.
func CodeOf(err error) Code {
	var oe *OutreachError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ""
}
