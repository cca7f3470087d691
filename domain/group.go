package domain

import "strings"

type Group struct {
	ExternalID string
	Model      Model
	Pads       map[string]*Pad
	// Sessions is keyed by user id.
	Sessions map[string]*Session
}

func NewGroup(externalID string, model Model) *Group {
	return &Group{
		ExternalID: externalID,
		Model:      model,
		Pads:       make(map[string]*Pad),
		Sessions:   make(map[string]*Session),
	}
}

// PadID derives the remote pad identifier from the group id and the pad name,
// following the remote service's group-pad naming scheme.
func PadID(groupID, name string) string {
	return groupID + "$" + name
}

// SplitPadID is the inverse of PadID. The name may itself contain the
// separator, so only the first one splits.
func SplitPadID(padID string) (groupID, name string) {
	groupID, name, _ = strings.Cut(padID, "$")
	return groupID, name
}
