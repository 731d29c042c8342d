package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": msg,
	})
}

// WriteServerError writes a 500 with msg. In debug mode the underlying error
// text is added as "detail".
func WriteServerError(w http.ResponseWriter, debug bool, msg string, err error) {
	body := map[string]any{
		"error":   http.StatusText(http.StatusInternalServerError),
		"message": msg,
	}
	if debug && err != nil {
		body["detail"] = err.Error()
	}
	WriteJSON(w, http.StatusInternalServerError, body)
}

// WriteBody writes raw bytes with the given content type.
func WriteBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write response body", "content_type", contentType, "error", err)
	}
}
