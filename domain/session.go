package domain

import "time"

// Session grants a user authoring access to a group's pads until Expiration.
// SessionID is the identity allocated by the remote editing service.
type Session struct {
	SessionID  string
	Expiration time.Time
}
