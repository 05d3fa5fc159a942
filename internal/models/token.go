package models

import "time"

// Token is a bearer token record, keyed by its 20-character id in the
// tokens collection. Expires is an absolute timestamp in milliseconds
// since the epoch. A token references its user by email value only, so
// it may outlive deletion of that user.
type Token struct {
	ID      string `json:"id,omitempty"`
	Email   string `json:"email,omitempty"`
	Expires int64  `json:"expires,omitempty"`
}

// ExpiredAt reports whether the token is past its expiry at the given
// instant. A token whose expiry equals the instant is already expired.
func (t Token) ExpiredAt(now time.Time) bool {
	return t.Expires <= now.UnixMilli()
}
