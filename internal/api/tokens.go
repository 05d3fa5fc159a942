package api

import (
	"errors"
	"net/http"
	"strings"

	"flatauth/internal/auth"
	"flatauth/internal/helpers"
	"flatauth/internal/models"
	"flatauth/internal/storage"
)

type tokenHandler struct {
	authority *auth.Authority
	store     *storage.Store
	methods   map[string]HandlerFunc
}

func newTokenHandler(authority *auth.Authority, store *storage.Store) *tokenHandler {
	h := &tokenHandler{authority: authority, store: store}
	h.methods = map[string]HandlerFunc{
		"post":   h.create,
		"get":    h.read,
		"put":    h.extend,
		"delete": h.remove,
	}
	return h
}

func (h *tokenHandler) handle(r *Request) Response {
	fn, ok := h.methods[r.Method]
	if !ok {
		return Response{Status: http.StatusMethodNotAllowed}
	}
	return fn(r)
}

// create is login: exchange credentials for a fresh token record.
func (h *tokenHandler) create(r *Request) Response {
	email, okEmail := stringField(r.Body, "email")
	password, okPassword := stringField(r.Body, "password")
	if !okEmail || !helpers.ValidEmail(email) || !okPassword {
		return fail(http.StatusBadRequest, "Missing required field(s)")
	}
	token, err := h.authority.Issue(email, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownUser):
			return fail(http.StatusBadRequest, "Could not find the specified user")
		case errors.Is(err, auth.ErrPasswordMismatch):
			return fail(http.StatusBadRequest, "Password did not match the specified user's stored password")
		default:
			return fail(http.StatusInternalServerError, "Could not create the new token")
		}
	}
	return Response{Payload: token}
}

func (h *tokenHandler) read(r *Request) Response {
	id, ok := tokenID(r.Query["id"])
	if !ok {
		return fail(http.StatusBadRequest, "Missing required field")
	}
	var token models.Token
	if err := h.store.Read(auth.TokensCollection, id, &token); err != nil {
		return Response{Status: http.StatusNotFound}
	}
	return Response{Payload: token}
}

// extend renews the token's sliding expiry when the body carries the
// explicit extend flag.
func (h *tokenHandler) extend(r *Request) Response {
	id, okID := tokenID(r.Body["id"])
	doExtend, _ := r.Body["extend"].(bool)
	if !okID || !doExtend {
		return fail(http.StatusBadRequest, "Missing required field(s) or field(s) are invalid")
	}
	if err := h.authority.Extend(id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return fail(http.StatusBadRequest, "Specified token does not exist")
		case errors.Is(err, auth.ErrTokenExpired):
			return fail(http.StatusBadRequest, "The token has already expired, and cannot be extended")
		default:
			return fail(http.StatusInternalServerError, "Could not update the token's expiration")
		}
	}
	return Response{}
}

// remove is logout: revoke the token record.
func (h *tokenHandler) remove(r *Request) Response {
	id, ok := tokenID(r.Query["id"])
	if !ok {
		return fail(http.StatusBadRequest, "Missing required field")
	}
	if err := h.authority.Revoke(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail(http.StatusBadRequest, "Could not find specified token")
		}
		return fail(http.StatusInternalServerError, "Could not delete the specified token")
	}
	return Response{}
}

// tokenID validates a candidate token identifier: a string of exactly
// the fixed id length after trimming.
func tokenID(v any) (string, bool) {
	raw, ok := v.(string)
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(raw)
	return s, len(s) == auth.TokenIDLength
}
