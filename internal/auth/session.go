package auth

import "github.com/google/uuid"

// Session identifies the authenticated actor for one request. It is
// built by the auth middleware from the validated token plus request
// metadata and passed explicitly into every core operation; nothing is
// kept in shared mutable state between calls.
type Session struct {
	UserID    uuid.UUID
	Role      string
	UserAgent string
	Origin    string
}
