// Package domain contains core concepts of the pads bridge: meetings, users,
// document groups, pads and authoring sessions, plus the permission and
// capacity policies attached to group models.
// No runtime, network, or transport logic should be added here.
package domain

type Role string

const (
	Moderator Role = "MODERATOR"
	Viewer    Role = "VIEWER"
)
