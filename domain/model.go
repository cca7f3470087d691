package domain

// Model is the policy class of a group. It decides which roles may open an
// authoring session and how many sessions can coexist in the group.
type Model string

const (
	Notes    Model = "notes"
	Captions Model = "captions"
)

type Policy struct {
	Permission map[Role]bool
	// Capacity is the maximum number of concurrent sessions. Zero means
	// unbounded.
	Capacity int
}

var policies = map[Model]Policy{
	Notes: {
		Permission: map[Role]bool{
			Moderator: true,
			Viewer:    true,
		},
		Capacity: 0,
	},
	Captions: {
		Permission: map[Role]bool{
			Moderator: true,
			Viewer:    false,
		},
		Capacity: 1,
	},
}

func (m Model) Valid() bool {
	_, ok := policies[m]
	return ok
}

func (m Model) Allows(role Role) bool {
	return policies[m].Permission[role]
}

func (m Model) Capacity() int {
	return policies[m].Capacity
}
