package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount   = &ValidationError{Field: "amount", Reason: "must be a positive number"}
	ErrNotAuthorized   = errors.New("not authorized")
	ErrStorageFault    = errors.New("storage fault")
	ErrExportFault     = errors.New("export fault")
	ErrNotFound        = errors.New("not found")
	ErrNothingToExport = fmt.Errorf("%w: nothing to export", ErrExportFault)
)

// ValidationError reports a bad answer. It is always recovered by asking
// the same question again.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageFault wraps err so that errors.Is(err, ErrStorageFault) holds.
func StorageFault(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFault, op, err)
}

// ExportFault wraps err so that errors.Is(err, ErrExportFault) holds.
func ExportFault(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExportFault, op, err)
}
