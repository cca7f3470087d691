package domain

// User mirrors a conference participant. AuthorID is the identity allocated
// for them by the remote editing service.
type User struct {
	AuthorID string
	Name     string
	Role     Role
	Locked   bool
}
