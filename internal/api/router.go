package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"flatauth/internal/auth"
	"flatauth/internal/storage"
)

// New builds the router from an explicit route table. Each resource
// handler does its own method dispatch, so every verb on a known path
// reaches it (unsupported verbs come back 405); unmatched paths fall
// through to a fixed 404 handler.
func New(store *storage.Store, authority *auth.Authority, hashKey string) *mux.Router {
	users := newUserHandler(store, authority, hashKey)
	tokens := newTokenHandler(authority, store)

	routes := map[string]HandlerFunc{
		"users":  users.handle,
		"tokens": tokens.handle,
	}

	r := mux.NewRouter().StrictSlash(true)
	for path, fn := range routes {
		r.Handle("/"+path, serve(fn))
	}
	// mux middleware does not run for the not-found fallback, so wrap
	// it explicitly.
	r.NotFoundHandler = requestID(serve(notFound))
	r.Use(requestID)
	return r
}

// notFound is the fixed fallback for unmatched paths.
func notFound(_ *Request) Response {
	return Response{Status: http.StatusNotFound}
}

// requestID stamps every response with a correlation id.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", uuid.NewString())
		next.ServeHTTP(w, r)
	})
}
