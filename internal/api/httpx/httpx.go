package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/baharkarakas/asso-backend/internal/apperr"
)

// Envelope is the shape of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteList adds count; nil slices are written as [].
func WriteList(w http.ResponseWriter, data any) {
	n := 0
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice {
		n = v.Len()
		if v.IsNil() {
			data = []any{}
		}
	}
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Count: &n})
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Envelope{Success: true, Message: msg})
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, Envelope{Success: false, Error: msg, Code: code})
}

// WriteErr maps a service error to its status. Internal causes are logged, never returned.
func WriteErr(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", w.Header().Get("X-Request-Id"), "err", err)
	}
	WriteError(w, apperr.HTTPStatus(kind), string(kind), apperr.Message(err))
}
