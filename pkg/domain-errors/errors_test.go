package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	cause := errors.New("cadastre timeout")
	err := fmt.Errorf("enrich: %w", Wrap(cause, CodeMandatoryDataMissing, "cadastre lookup failed"))

	assert.True(t, HasCode(err, CodeMandatoryDataMissing))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeMandatoryDataMissing, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(cause))
	assert.Equal(t, "cadastre lookup failed: cadastre timeout", errors.Unwrap(err).Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(CodeMandatoryDataMissing))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeValidation))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Code("other")))
}
