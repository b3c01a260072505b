package ingest

import (
	"errors"

	"kerneltest/internal/logparser"
	"kerneltest/internal/model"
)

// Kind is the terminal classification of an upload.
type Kind int

const (
	Success Kind = iota
	ReservedUsername
	InvalidFile
	InvalidMimeType
	MissingField
)

// Kinds lists every outcome, in precedence order after Success.
var Kinds = []Kind{Success, MissingField, ReservedUsername, InvalidMimeType, InvalidFile}

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ReservedUsername:
		return "reserved_username"
	case InvalidFile:
		return "invalid_file"
	case InvalidMimeType:
		return "invalid_mime_type"
	case MissingField:
		return "missing_field"
	default:
		return "unknown"
	}
}

// Outcome is produced once per upload and rendered once by the HTTP layer.
type Outcome struct {
	Kind Kind
	// Run is set on Success.
	Run *model.TestRun
	// Fields is set on MissingField.
	Fields []FieldError
	// Reserved is the reserved account name, set on ReservedUsername.
	Reserved string
	// Err keeps the underlying rejection reason for logs.
	Err error
}

// Accepted wraps a persisted run.
func Accepted(run *model.TestRun) Outcome {
	return Outcome{Kind: Success, Run: run}
}

// MissingFields reports a request that failed shape validation.
func MissingFields(errs []FieldError) Outcome {
	return Outcome{Kind: MissingField, Fields: errs}
}

// Rejected converts a pipeline error into an outcome. ok is false for errors
// that are not user-correctable and must propagate as server faults.
func Rejected(err error, reserved string) (out Outcome, ok bool) {
	switch {
	case errors.Is(err, ErrReservedUsername):
		return Outcome{Kind: ReservedUsername, Reserved: reserved, Err: err}, true
	case errors.Is(err, ErrInvalidMimeType):
		return Outcome{Kind: InvalidMimeType, Err: err}, true
	case errors.Is(err, logparser.ErrInvalidFile), errors.Is(err, ErrTooLarge):
		return Outcome{Kind: InvalidFile, Err: err}, true
	default:
		return Outcome{}, false
	}
}
