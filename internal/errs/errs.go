// Package errs holds the error kinds shared by the progression services.
// Services wrap them with fmt.Errorf("...: %w", ...) and handlers map them to
// HTTP statuses with errors.Is.
package errs

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)
