package models

// User is an account record, keyed by email in the users collection.
// The password is never stored in the clear; only its keyed digest is kept.
// All fields carry omitempty so a corrupt record reads back as an empty
// document rather than a skeleton of zero values.
type User struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	StreetAddress  string `json:"streetAddress,omitempty"`
	HashedPassword string `json:"hashedPassword,omitempty"`
}

// Public returns a copy safe to send over the wire, with the password
// digest stripped.
func (u User) Public() User {
	u.HashedPassword = ""
	return u
}
