package domain

import "bbb-pads/throttle"

// Pad holds the last known snapshots of a collaboratively-edited document.
// Text and HTML advance only when an update notification is processed; they
// are the baseline for the next delta computation.
type Pad struct {
	Text string
	HTML string
	// Update collapses bursts of remote update notifications into a single
	// content poll per throttle window.
	Update *throttle.Throttle
}
