package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistenceUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Persistence("save table", cause)

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "save table", pe.Op)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save table: connection reset", err.Error())

	assert.NoError(t, Persistence("noop", nil))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "not configured: missing CLOUD_NAME, PRESET",
		(&ConfigurationError{Missing: []string{"CLOUD_NAME", "PRESET"}}).Error())
	assert.Equal(t, "validation failed: bad", (&ValidationError{Msg: "bad"}).Error())
	assert.Equal(t, "upload failed: 400 nope", (&UploadError{Status: 400, Body: "nope"}).Error())
}

func TestSentinelIdentitySurvivesWrapping(t *testing.T) {
	sentinel := &ValidationError{Msg: "no file provided"}
	wrapped := fmt.Errorf("upload: %w", sentinel)

	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, &ValidationError{Msg: "no file provided"})

	var ve *ValidationError
	assert.ErrorAs(t, wrapped, &ve)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("x: %w", &ValidationError{Msg: "m"})))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(&ConfigurationError{}))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(&UploadError{Status: 401}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Persistence("op", errors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
