package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/incline-app/incline-backend/internal/models"
)

// MaxBodyBytes caps request bodies; inline base64 avatars must fit in it.
const MaxBodyBytes = 10 << 20

// ErrBadRequest marks a request body that could not be decoded.
var ErrBadRequest = errors.New("invalid request body")

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg}. Errors and plain acknowledgements
// share this shape.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// DecodeJSON decodes a single JSON object from the request body and
// rejects unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, out interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", ErrBadRequest)
	}
	return nil
}

// WriteStoreError maps store sentinels to their status codes. Anything
// unrecognised is logged and reported as a 500 without detail.
func WriteStoreError(w http.ResponseWriter, logger *zap.Logger, err error, notFound, conflict string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		WriteMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, models.ErrConflict):
		WriteMessage(w, http.StatusConflict, conflict)
	default:
		logger.Error("store failure", zap.Error(err))
		WriteMessage(w, http.StatusInternalServerError, "server error")
	}
}
