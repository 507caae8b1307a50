package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks caller bugs such as malformed records; the record is
	// dropped and logged, never the batch.
	ErrValidation = errors.New("validation error")
	// ErrMissingKey marks a raw row with no usable dedup key.
	ErrMissingKey = errors.New("missing dedup key")
	// ErrCollaborator marks any failure from an external dependency.
	ErrCollaborator = errors.New("collaborator error")
	// ErrTypeMismatch marks an attachment whose content type disagrees with
	// the declared format.
	ErrTypeMismatch = errors.New("content type mismatch")
	// ErrParse marks model output missing the expected bracketed structure.
	// Stages treat it exactly like a transport failure: retry next tick.
	ErrParse = errors.New("parse error")
	// ErrNotFound marks a reference that resolves to nothing.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrCollaborator
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether an error should leave the record eligible for
// the next tick rather than being recorded against it. Collaborator and parse
// failures retry; validation failures do not.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrMissingKey):
		return false
	default:
		return true
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
