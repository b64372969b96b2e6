// Package respond writes JSON responses and error payloads.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the payload of every error response. Detail and Expect are
// only present when there is something useful to say.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Expect any    `json:"expect,omitempty"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// ヘッダー送信済みのためログのみ
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg})
}

// ErrorDetail writes {"error": msg, "detail": detail} with credentials masked in detail.
func ErrorDetail(w http.ResponseWriter, code int, msg, detail string) {
	JSON(w, code, ErrorBody{Error: msg, Detail: Sanitize(detail)})
}

// Invalid writes a 400 naming the accepted request shapes.
func Invalid(w http.ResponseWriter, msg string, expect any) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: msg, Expect: expect})
}

// SafeError logs err (sanitized) and answers with a generic message for
// 5xx codes. Lower codes return err's message as-is.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < http.StatusInternalServerError {
		Error(w, code, err.Error())
		return
	}

	slog.Default().Error("internal server error",
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	Error(w, code, "internal server error")
}
