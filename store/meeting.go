package store

import (
	"context"
	"fmt"

	"bbb-pads/domain"
	"bbb-pads/errors"
)

func (s *Store) CreateMeeting(meetingID string, locked bool) (*domain.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meetings[meetingID]; ok {
		s.log.Warn("meeting duplicated", "meetingId", meetingID)
		return nil, fmt.Errorf("%w: meeting %s", errors.ErrDuplicate, meetingID)
	}

	meeting := domain.NewMeeting(meetingID, locked)
	s.meetings[meetingID] = meeting
	s.log.Debug("meeting created", "meetingId", meetingID, "locked", locked)

	return meeting, nil
}

// DeleteMeeting cascades group deletion (sessions, then pads), then user
// deletion, then removes the meeting record. A failed child leaves the
// meeting record (and anything not yet deleted) in place; children that
// already completed stay deleted.
func (s *Store) DeleteMeeting(ctx context.Context, meetingID string) error {
	if !s.hasMeeting(meetingID) {
		return nil
	}

	groups := make([]func() error, 0)
	for _, groupID := range s.groupIDs(meetingID) {
		groupID := groupID
		groups = append(groups, func() error {
			return s.DeleteGroup(ctx, meetingID, groupID)
		})
	}
	if err := aggregate(groups); err != nil {
		s.log.Error("meeting deleting failed", "meetingId", meetingID, "error", err)
		return fmt.Errorf("deleting meeting %s groups: %w", meetingID, err)
	}

	users := make([]func() error, 0)
	for _, userID := range s.userIDs(meetingID) {
		userID := userID
		users = append(users, func() error {
			return s.DeleteUser(ctx, meetingID, userID)
		})
	}
	if err := aggregate(users); err != nil {
		s.log.Error("meeting deleting failed", "meetingId", meetingID, "error", err)
		return fmt.Errorf("deleting meeting %s users: %w", meetingID, err)
	}

	s.mu.Lock()
	delete(s.meetings, meetingID)
	s.mu.Unlock()
	s.log.Debug("meeting deleted", "meetingId", meetingID)

	return nil
}

// LockMeeting evicts the notes sessions of locked viewers before flipping the
// lock flag.
func (s *Store) LockMeeting(ctx context.Context, meetingID string) error {
	if !s.hasMeeting(meetingID) {
		return nil
	}

	if err := aggregate(s.onMeetingLock(ctx, meetingID)); err != nil {
		s.log.Error("meeting locking failed", "meetingId", meetingID, "error", err)
		return fmt.Errorf("locking meeting %s: %w", meetingID, err)
	}

	s.setMeetingLocked(meetingID, true)
	s.log.Debug("meeting locked", "meetingId", meetingID)

	return nil
}

func (s *Store) UnlockMeeting(meetingID string) error {
	if !s.hasMeeting(meetingID) {
		return nil
	}

	s.setMeetingLocked(meetingID, false)
	s.log.Debug("meeting unlocked", "meetingId", meetingID)

	return nil
}

func (s *Store) setMeetingLocked(meetingID string, locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meeting, ok := s.meetings[meetingID]; ok {
		meeting.Locked = locked
	}
}
