package service

import (
	"errors"
	"fmt"

	"github.com/Egorka7485/tgkadsf/internal/transport"
)

var (
	ErrValidation = errors.New("validation")    // 400
	ErrNotFound   = errors.New("not found")     // 404
	ErrConflict   = errors.New("conflict")      // 409
	ErrEmptyCart  = errors.New("cart is empty") // 400
)

func fieldError(field, msg string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &transport.FieldError{Field: field, Message: msg})
}
