package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/chessgame-go/internal/api/apierr"
	"github.com/mcoot/chessgame-go/internal/api/request"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 64 * 1024

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeBody decodes a JSON request body into v and runs its Validate method.
// Any failure is a 400.
func decodeBody(w http.ResponseWriter, r *http.Request, v request.Validator) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return NewInvalidRequestError("invalid request body")
	}
	if err := v.Validate(); err != nil {
		return NewInvalidRequestError(err.Error())
	}
	return nil
}
