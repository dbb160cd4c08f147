package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chessgame-go/internal/chess"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/auth"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"bad request", fmt.Errorf("%w: name is required", model.ErrBadRequest), http.StatusBadRequest, CodeInvalidRequest},
		{"invalid move", fmt.Errorf("%w: e2e5", chess.ErrInvalidMove), http.StatusBadRequest, CodeInvalidRequest},
		{"unauthorized", model.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"invalid session", auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{"color taken", model.ErrColorTaken, http.StatusForbidden, CodeColorTaken},
		{"game not found", model.ErrGameNotFound, http.StatusNotFound, CodeGameNotFound},
		{"user not found", model.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound},
		{"username taken", model.ErrUsernameTaken, http.StatusConflict, CodeUsernameTaken},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternalError},
		{"explicit", NewInvalidRequestError("invalid request body"), http.StatusBadRequest, CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.status, Status(tt.err))
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestInternalErrorsHideDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rr.Body.String(), "pq:")
}

func TestInternalErrorForRequest(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, NewInternalErrorForRequest("req-42"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, CodeInternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "req-42")

	assert.Equal(t, NewInternalError(), NewInternalErrorForRequest(""))
}
