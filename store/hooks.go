package store

import (
	"context"

	"bbb-pads/domain"
)

// Cascade hooks. Each returns the child operations an invariant transition
// requires; the calling operation aggregates them before mutating its own
// state.

// onMeetingLock removes notes sessions of every locked viewer.
func (s *Store) onMeetingLock(ctx context.Context, meetingID string) []func() error {
	var children []func() error
	for _, userID := range s.userIDs(meetingID) {
		role, ok := s.userRole(meetingID, userID)
		if !ok || role != domain.Viewer || !s.isUserLocked(meetingID, userID) {
			continue
		}
		for _, groupID := range s.groupIDs(meetingID) {
			if model, ok := s.groupModel(meetingID, groupID); ok && model == domain.Notes {
				groupID, userID := groupID, userID
				children = append(children, func() error {
					return s.DeleteSession(ctx, meetingID, groupID, userID)
				})
			}
		}
	}

	return children
}

// onUserLock removes the user's notes sessions when the meeting is locked and
// the user is a viewer.
func (s *Store) onUserLock(ctx context.Context, meetingID, userID string) []func() error {
	role, ok := s.userRole(meetingID, userID)
	if !ok || role != domain.Viewer || !s.isMeetingLocked(meetingID) {
		return nil
	}

	var children []func() error
	for _, groupID := range s.groupIDs(meetingID) {
		if model, ok := s.groupModel(meetingID, groupID); ok && model == domain.Notes {
			groupID := groupID
			children = append(children, func() error {
				return s.DeleteSession(ctx, meetingID, groupID, userID)
			})
		}
	}

	return children
}

// onUserDemote removes captions sessions unconditionally, and notes sessions
// only when both the meeting and the user are locked.
func (s *Store) onUserDemote(ctx context.Context, meetingID, userID string) []func() error {
	meetingLocked := s.isMeetingLocked(meetingID)
	userLocked := s.isUserLocked(meetingID, userID)

	var children []func() error
	for _, groupID := range s.groupIDs(meetingID) {
		model, ok := s.groupModel(meetingID, groupID)
		if !ok {
			continue
		}
		groupID := groupID
		switch model {
		case domain.Notes:
			if meetingLocked && userLocked {
				children = append(children, func() error {
					return s.DeleteSession(ctx, meetingID, groupID, userID)
				})
			}
		case domain.Captions:
			children = append(children, func() error {
				return s.DeleteSession(ctx, meetingID, groupID, userID)
			})
		}
	}

	return children
}

// onSessionCreate evicts the oldest-by-expiration sessions exceeding the
// group capacity, vacating exactly one seat for the session about to be
// created.
func (s *Store) onSessionCreate(ctx context.Context, meetingID, groupID string) []func() error {
	model, ok := s.groupModel(meetingID, groupID)
	if !ok {
		return nil
	}
	capacity := model.Capacity()
	if capacity == 0 {
		return nil
	}

	seats := s.sessionSeats(meetingID, groupID)
	if len(seats) < capacity {
		return nil
	}

	excess := len(seats) - capacity + 1
	s.log.Warn("group at capacity, evicting", "meetingId", meetingID, "groupId", groupID, "evicted", excess)

	children := make([]func() error, 0, excess)
	for _, seat := range seats[:excess] {
		userID := seat.userID
		children = append(children, func() error {
			return s.DeleteSession(ctx, meetingID, groupID, userID)
		})
	}

	return children
}
