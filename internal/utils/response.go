package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"ROAMMATE_BACK-END/internal/dto"
)

const maxRequestBody = 1 << 20

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes a dto.ErrorResponse with the given status
func WriteErrorResponse(w http.ResponseWriter, status int, errMsg, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: errMsg, Message: message})
}

// WriteRedirectResponse writes an error response carrying a frontend route the client should navigate to
func WriteRedirectResponse(w http.ResponseWriter, status int, errMsg, message, redirect string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: errMsg, Message: message, Redirect: redirect})
}

// DecodeJSONRequest decodes the request body into dst.
// On failure it writes a 400 response and returns the error.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		msg := err.Error()
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is empty"
		case errors.As(err, &maxErr):
			msg = fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit)
		}
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", msg)
		return err
	}
	return nil
}
