package core

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/barcodegen/internal/sheet"
)

// Client input errors. Requests failing with one of these mutate nothing.
var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrNoFile        = errors.New("no file provided")
	ErrFileTooLarge  = errors.New("file too large")
	ErrNoWorksheet   = sheet.ErrNoWorksheet
)

// Payload validation errors, reported inside a GenerationError.
var (
	ErrPayloadDigits = errors.New("payload must contain only digits")
	ErrPayloadLength = errors.New("payload length does not match format")
)

// GenerationError reports why a single code could not be rendered.
// Batch operations drop the code and carry on.
type GenerationError struct {
	Format  Format
	Code    Code
	Payload string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Payload == "" {
		return fmt.Sprintf("generate %s barcode for %s: %v", e.Format, e.Code, e.Err)
	}
	return fmt.Sprintf("generate %s barcode for %s (payload %s): %v", e.Format, e.Code, e.Payload, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsClientError reports whether err was caused by bad request input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrNoWorksheet)
}
