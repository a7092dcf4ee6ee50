package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonFollowsWrapping(t *testing.T) {
	err := fmt.Errorf("%w: https://www.bigbasket.com/pd/1", ErrDuplicateProduct)
	assert.Equal(t, "duplicate_product", Reason(err))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestReasonUnknownError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, "internal_error", Reason(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestQuotaWrappedAsExtractionKeepsFirstMatch(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrExtractionFailed, ErrQuotaExceeded)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
	assert.Equal(t, "extraction_failed", Reason(err))
}
