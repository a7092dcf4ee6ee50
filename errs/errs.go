// Package errs holds the failure taxonomy shared by ingestion, personalization
// and analysis. Callers wrap these with fmt.Errorf("%w: ...") and match with errors.Is.
package errs

import (
	"errors"
	"net/http"
)

var (
	ErrDuplicateProduct   = errors.New("product already exists")
	ErrUnsupportedVendor  = errors.New("unsupported vendor")
	ErrInsufficientImages = errors.New("insufficient images")
	ErrNotEdible          = errors.New("product is not edible")
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrPersistenceFailed  = errors.New("persistence failed")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrNotFound           = errors.New("not found")
	ErrQuotaExceeded      = errors.New("llm quota exceeded")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("already exists")
)

var reasons = []struct {
	err    error
	reason string
	status int
}{
	{ErrDuplicateProduct, "duplicate_product", http.StatusConflict},
	{ErrUnsupportedVendor, "unsupported_vendor", http.StatusBadRequest},
	{ErrInsufficientImages, "insufficient_images", http.StatusUnprocessableEntity},
	{ErrNotEdible, "not_edible", http.StatusUnprocessableEntity},
	{ErrExtractionFailed, "extraction_failed", http.StatusBadGateway},
	{ErrPersistenceFailed, "persistence_failed", http.StatusInternalServerError},
	{ErrGenerationFailed, "generation_failed", http.StatusBadGateway},
	{ErrNotFound, "not_found", http.StatusNotFound},
	{ErrQuotaExceeded, "quota_exceeded", http.StatusTooManyRequests},
	{ErrInvalidInput, "invalid_input", http.StatusBadRequest},
	{ErrAlreadyExists, "already_exists", http.StatusConflict},
}

// Reason returns the stable machine-readable reason for err.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "internal_error"
}

// HTTPStatus maps err to the status code the API responds with.
func HTTPStatus(err error) int {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.status
		}
	}
	return http.StatusInternalServerError
}
