package domain

type Meeting struct {
	ID     string
	Locked bool
	Users  map[string]*User
	Groups map[string]*Group
}

func NewMeeting(id string, locked bool) *Meeting {
	return &Meeting{
		ID:     id,
		Locked: locked,
		Users:  make(map[string]*User),
		Groups: make(map[string]*Group),
	}
}
