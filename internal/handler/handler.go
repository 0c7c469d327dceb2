package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dwellist/dwellist/internal/apperror"
)

// apiFunc is a handler that reports failures as errors instead of
// writing them itself. Wrap funnels every error through the single
// JSON boundary, mirroring the HTTP status in the body.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

func Wrap(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		appErr := apperror.From(err)
		if appErr.StatusCode >= http.StatusInternalServerError {
			slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		}
		apperror.Write(w, appErr)
	}
}

// respond writes v as a JSON body with the given status.
func respond(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

// decode reads a JSON request body into v, capped at 1MB.
func decode(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		return apperror.BadRequest("invalid request body")
	}
	return nil
}
