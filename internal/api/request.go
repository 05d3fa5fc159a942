package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"flatauth/internal/helpers"
)

// Request is the uniform record every handler consumes: trimmed path,
// lower-cased method, last-value-wins query parameters, the raw header
// map and a best-effort parsed JSON body.
type Request struct {
	Path    string
	Method  string
	Query   map[string]string
	Headers http.Header
	Body    map[string]any
}

// Response is what every handler produces. A zero Status means 200 and
// a nil Payload means an empty JSON object.
type Response struct {
	Status  int
	Payload any
}

// HandlerFunc processes one normalized request.
type HandlerFunc func(r *Request) Response

// errorPayload is the uniform error body.
func errorPayload(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func fail(status int, msg string) Response {
	return Response{Status: status, Payload: errorPayload(msg)}
}

// normalize converts an inbound HTTP request into the uniform record.
// A malformed or empty body yields an empty object, never an error.
func normalize(r *http.Request) *Request {
	query := make(map[string]string)
	for key, values := range r.URL.Query() {
		query[key] = values[len(values)-1]
	}
	body, _ := io.ReadAll(r.Body)
	return &Request{
		Path:    strings.Trim(r.URL.Path, "/"),
		Method:  strings.ToLower(r.Method),
		Query:   query,
		Headers: r.Header,
		Body:    helpers.ParseJSON(body),
	}
}

// serve adapts a HandlerFunc onto the HTTP transport, applying the
// response defaults and serializing the payload as JSON.
func serve(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := fn(normalize(r))
		if resp.Status == 0 {
			resp.Status = http.StatusOK
		}
		if resp.Payload == nil {
			resp.Payload = map[string]any{}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		if err := json.NewEncoder(w).Encode(resp.Payload); err != nil {
			// Headers are gone already; nothing useful left to do.
			return
		}
	}
}

// stringField extracts a trimmed, non-empty string field from a body
// or query map. ok is false when the field is missing, not a string,
// or blank.
func stringField(m map[string]any, key string) (string, bool) {
	raw, ok := m[key].(string)
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(raw)
	return s, s != ""
}
