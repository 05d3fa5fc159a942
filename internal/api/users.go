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

// passwordLength is a deliberate fixed-length policy: passwords are
// exactly this long after trimming, not at least.
const passwordLength = 10

type userHandler struct {
	store     *storage.Store
	authority *auth.Authority
	hashKey   string
	methods   map[string]HandlerFunc
}

func newUserHandler(store *storage.Store, authority *auth.Authority, hashKey string) *userHandler {
	h := &userHandler{store: store, authority: authority, hashKey: hashKey}
	h.methods = map[string]HandlerFunc{
		"post":   h.create,
		"get":    h.read,
		"put":    h.update,
		"delete": h.remove,
	}
	return h
}

func (h *userHandler) handle(r *Request) Response {
	fn, ok := h.methods[r.Method]
	if !ok {
		return Response{Status: http.StatusMethodNotAllowed}
	}
	return fn(r)
}

// signupRequest is a validated user-creation payload.
type signupRequest struct {
	Name          string
	Email         string
	StreetAddress string
	Password      string
}

func parseSignup(body map[string]any) (signupRequest, bool) {
	name, okName := stringField(body, "name")
	email, okEmail := stringField(body, "email")
	street, okStreet := stringField(body, "streetAddress")
	password, okPassword := passwordField(body)
	req := signupRequest{Name: name, Email: email, StreetAddress: street, Password: password}
	return req, okName && okEmail && helpers.ValidEmail(email) && okStreet && okPassword
}

// passwordField accepts a password only when its trimmed length is
// exactly passwordLength.
func passwordField(m map[string]any) (string, bool) {
	raw, ok := m["password"].(string)
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(raw)
	return s, len(s) == passwordLength
}

func (h *userHandler) create(r *Request) Response {
	req, ok := parseSignup(r.Body)
	if !ok {
		return fail(http.StatusBadRequest, "Missing required fields")
	}
	digest, err := helpers.Hash(h.hashKey, req.Password)
	if err != nil {
		return fail(http.StatusInternalServerError, "Could not hash the user's password")
	}
	user := models.User{
		Name:           req.Name,
		Email:          req.Email,
		StreetAddress:  req.StreetAddress,
		HashedPassword: digest,
	}
	if err := h.store.Create(auth.UsersCollection, req.Email, &user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return fail(http.StatusConflict, "A user with that email already exists")
		}
		return fail(http.StatusInternalServerError, "Could not create the new user")
	}
	return Response{}
}

func (h *userHandler) read(r *Request) Response {
	email := strings.TrimSpace(r.Query["email"])
	if !helpers.ValidEmail(email) {
		return fail(http.StatusBadRequest, "Missing required field")
	}
	if !h.authority.Verify(r.Headers.Get("token"), email) {
		return fail(http.StatusForbidden, "Missing required token in header, or token is invalid")
	}
	var user models.User
	if err := h.store.Read(auth.UsersCollection, email, &user); err != nil {
		return Response{Status: http.StatusNotFound}
	}
	return Response{Payload: user.Public()}
}

func (h *userHandler) update(r *Request) Response {
	email, ok := stringField(r.Body, "email")
	if !ok || !helpers.ValidEmail(email) {
		return fail(http.StatusBadRequest, "Missing required field")
	}
	name, hasName := stringField(r.Body, "name")
	street, hasStreet := stringField(r.Body, "streetAddress")
	password, hasPassword := passwordField(r.Body)
	if !hasName && !hasStreet && !hasPassword {
		return fail(http.StatusBadRequest, "Missing field to update")
	}
	if !h.authority.Verify(r.Headers.Get("token"), email) {
		return fail(http.StatusForbidden, "Missing required token in header, or token is invalid")
	}
	var user models.User
	if err := h.store.Read(auth.UsersCollection, email, &user); err != nil {
		// Missing target surfaces as a bad request, per this handler's
		// convention.
		return fail(http.StatusBadRequest, "The specified user does not exist")
	}
	if hasName {
		user.Name = name
	}
	if hasStreet {
		user.StreetAddress = street
	}
	if hasPassword {
		digest, err := helpers.Hash(h.hashKey, password)
		if err != nil {
			return fail(http.StatusInternalServerError, "Could not hash the user's password")
		}
		user.HashedPassword = digest
	}
	if err := h.store.Update(auth.UsersCollection, email, &user); err != nil {
		return fail(http.StatusInternalServerError, "Could not update the user")
	}
	return Response{}
}

func (h *userHandler) remove(r *Request) Response {
	email := strings.TrimSpace(r.Query["email"])
	if !helpers.ValidEmail(email) {
		return fail(http.StatusBadRequest, "Missing required field")
	}
	if !h.authority.Verify(r.Headers.Get("token"), email) {
		return fail(http.StatusForbidden, "Missing required token in header, or token is invalid")
	}
	var user models.User
	if err := h.store.Read(auth.UsersCollection, email, &user); err != nil {
		return fail(http.StatusBadRequest, "Could not find specified user")
	}
	// Deliberately no cascade: the user's tokens stay on disk and die
	// by expiry.
	if err := h.store.Delete(auth.UsersCollection, email); err != nil {
		return fail(http.StatusInternalServerError, "Could not delete the specified user")
	}
	return Response{}
}
