package services

import (
	"errors"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many login attempts")

	ErrRiderNotFound  = errors.New("rider not found")
	ErrEventNotFound  = errors.New("event not found")
	ErrResultNotFound = errors.New("result not found")

	ErrRiderNicknameConflict = errors.New("rider nickname is already in use")
	ErrResultConflict        = errors.New("result for this event and rider already exists")
	ErrResultRefsInvalid     = errors.New("result references an unknown event or rider")

	ErrInvalidEventLevel  = errors.New("invalid event level")
	ErrInvalidEventStatus = errors.New("invalid event status")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEventIDRequired    = errors.New("event id is required")

	ErrPointsOverrideForbidden = errors.New("only admins can override points")
	ErrPhotoStorageDisabled    = errors.New("photo storage is not configured")
)

// ValidationError собирает нарушения по полям в одну ошибку уровня 400.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func newValidationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}
