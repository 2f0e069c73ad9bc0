package ocr

import (
	"errors"
	"fmt"
)

// Common OCR parsing errors
var (
	// ErrNoResponses is returned when the OCR JSON envelope has no
	// "responses" key or it is not a list.
	ErrNoResponses = errors.New("OCR JSON envelope has no responses list")

	// ErrEmptyResponses is returned when the "responses" list is empty.
	ErrEmptyResponses = errors.New("OCR JSON envelope has an empty responses list")

	// ErrResponseError is returned when the first response carries an
	// "error" field, meaning the OCR run itself failed upstream.
	ErrResponseError = errors.New("OCR response contains an error")

	// ErrInvalidJSON is returned when the payload is not valid JSON at all.
	ErrInvalidJSON = errors.New("invalid OCR JSON payload")
)

// OCRError wraps errors with additional context about the OCR parsing failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "FromJSON", "parsePages").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewOCRError creates a new OCRError with the specified operation and underlying error.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return NewOCRError(op, err, details)
}
