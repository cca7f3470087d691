package store

import (
	"context"
	"fmt"

	"bbb-pads/domain"
	"bbb-pads/errors"
	"bbb-pads/etherpad"
)

// CreateUser allocates a remote author identity for the joining participant
// and records the reverse mapping from it.
func (s *Store) CreateUser(ctx context.Context, meetingID, userID, name string, role domain.Role, locked bool) (*domain.User, error) {
	if !s.hasMeeting(meetingID) {
		return nil, fmt.Errorf("%w: meeting %s", errors.ErrMissingEntity, meetingID)
	}
	if _, ok := s.user(meetingID, userID); ok {
		s.log.Warn("user duplicated", "meetingId", meetingID, "userId", userID)
		return nil, fmt.Errorf("%w: user %s", errors.ErrDuplicate, userID)
	}

	data, err := s.api.Call(ctx, "createAuthor", etherpad.Params{"name": name})
	if err != nil {
		s.log.Error("user creating failed", "meetingId", meetingID, "userId", userID, "error", err)
		return nil, fmt.Errorf("creating user %s: %w", userID, err)
	}
	authorID := data.String("authorID")

	s.mu.Lock()
	meeting, ok := s.meetings[meetingID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: meeting %s", errors.ErrMissingEntity, meetingID)
	}
	if _, ok := meeting.Users[userID]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: user %s", errors.ErrDuplicate, userID)
	}
	user := &domain.User{
		AuthorID: authorID,
		Name:     name,
		Role:     role,
		Locked:   locked,
	}
	meeting.Users[userID] = user
	s.mu.Unlock()

	s.mapper.AddUser(meetingID, userID, authorID)
	s.log.Debug("user created", "meetingId", meetingID, "userId", userID, "authorId", authorID)

	return user, nil
}

// DeleteUser evicts the user's sessions across all groups, then drops the
// mapper entry and the user record. Missing users resolve as a no-op.
func (s *Store) DeleteUser(ctx context.Context, meetingID, userID string) error {
	user, ok := s.user(meetingID, userID)
	if !ok {
		s.log.Warn("user missing", "meetingId", meetingID, "userId", userID)
		return nil
	}

	children := make([]func() error, 0)
	for _, groupID := range s.groupIDs(meetingID) {
		groupID := groupID
		children = append(children, func() error {
			return s.DeleteSession(ctx, meetingID, groupID, userID)
		})
	}
	if err := aggregate(children); err != nil {
		s.log.Error("user deleting failed", "meetingId", meetingID, "userId", userID, "error", err)
		return fmt.Errorf("deleting user %s: %w", userID, err)
	}

	s.mapper.RemoveUser(user.AuthorID)

	s.mu.Lock()
	if meeting, ok := s.meetings[meetingID]; ok {
		delete(meeting.Users, userID)
	}
	s.mu.Unlock()
	s.log.Debug("user deleted", "meetingId", meetingID, "userId", userID, "authorId", user.AuthorID)

	return nil
}

// LockUser evicts the user's notes sessions when the meeting is locked, then
// flips the lock flag.
func (s *Store) LockUser(ctx context.Context, meetingID, userID string) error {
	if !s.hasUser(meetingID, userID) {
		return nil
	}

	if err := aggregate(s.onUserLock(ctx, meetingID, userID)); err != nil {
		s.log.Error("user locking failed", "meetingId", meetingID, "userId", userID, "error", err)
		return fmt.Errorf("locking user %s: %w", userID, err)
	}

	s.setUserLocked(meetingID, userID, true)
	s.log.Debug("user locked", "meetingId", meetingID, "userId", userID)

	return nil
}

func (s *Store) UnlockUser(meetingID, userID string) error {
	if !s.hasUser(meetingID, userID) {
		return nil
	}

	s.setUserLocked(meetingID, userID, false)
	s.log.Debug("user unlocked", "meetingId", meetingID, "userId", userID)

	return nil
}

// PromoteUser sets the moderator role. No cascade: a wider role never
// invalidates existing sessions.
func (s *Store) PromoteUser(meetingID, userID string) error {
	if !s.hasUser(meetingID, userID) {
		return nil
	}

	s.setUserRole(meetingID, userID, domain.Moderator)
	s.log.Debug("user promoted", "meetingId", meetingID, "userId", userID)

	return nil
}

// DemoteUser sets the viewer role after evicting the sessions the narrower
// role no longer permits. Demoting a non-moderator is a no-op.
func (s *Store) DemoteUser(ctx context.Context, meetingID, userID string) error {
	role, ok := s.userRole(meetingID, userID)
	if !ok || role != domain.Moderator {
		return nil
	}

	if err := aggregate(s.onUserDemote(ctx, meetingID, userID)); err != nil {
		s.log.Error("user demoting failed", "meetingId", meetingID, "userId", userID, "error", err)
		return fmt.Errorf("demoting user %s: %w", userID, err)
	}

	s.setUserRole(meetingID, userID, domain.Viewer)
	s.log.Debug("user demoted", "meetingId", meetingID, "userId", userID)

	return nil
}

func (s *Store) setUserLocked(meetingID, userID string, locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meeting, ok := s.meetings[meetingID]; ok {
		if user, ok := meeting.Users[userID]; ok {
			user.Locked = locked
		}
	}
}

func (s *Store) setUserRole(meetingID, userID string, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meeting, ok := s.meetings[meetingID]; ok {
		if user, ok := meeting.Users[userID]; ok {
			user.Role = role
		}
	}
}
