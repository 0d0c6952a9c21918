package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the uniform envelope. Every response, success or failure,
// is exactly one of the two shapes: {success:true, data, meta?} or
// {success:false, error, meta}.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorBody carries the outward-facing failure description.
type ErrorBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta carries the response timestamp and, for paginated listings, the
// page window.
type Meta struct {
	Page      int    `json:"page,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

func newMeta() *Meta {
	return &Meta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// WriteJSON writes v as JSON with the given status code. Responses are
// marked uncacheable since most of them carry credentials or per-user
// data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WriteSuccess writes a success envelope around data.
func WriteSuccess(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Response{Success: true, Data: data, Meta: newMeta()})
}

// WritePage writes a success envelope for a paginated listing.
func WritePage(w http.ResponseWriter, code int, data any, page, limit, total int) {
	meta := newMeta()
	meta.Page = page
	meta.Limit = limit
	meta.Total = total
	WriteJSON(w, code, Response{Success: true, Data: data, Meta: meta})
}
