package store

import (
	"context"
	"fmt"

	"bbb-pads/contract"
	"bbb-pads/domain"
	"bbb-pads/errors"
	"bbb-pads/etherpad"
)

// CreateSession grants a user authoring access to a group. Permission is
// checked before anything reaches the gateway; when the group is at capacity
// the oldest sessions are evicted first to vacate exactly one seat.
func (s *Store) CreateSession(ctx context.Context, meetingID, groupID, userID string) (*domain.Session, error) {
	group, ok := s.group(meetingID, groupID)
	if !ok {
		s.log.Warn("group missing", "meetingId", meetingID, "groupId", groupID)
		return nil, fmt.Errorf("%w: group %s", errors.ErrMissingEntity, groupID)
	}
	user, ok := s.user(meetingID, userID)
	if !ok {
		s.log.Warn("user missing", "meetingId", meetingID, "userId", userID)
		return nil, fmt.Errorf("%w: user %s", errors.ErrMissingEntity, userID)
	}
	if !group.Model.Allows(user.Role) {
		s.log.Warn("permission missing", "meetingId", meetingID, "groupId", groupID, "userId", userID)
		return nil, fmt.Errorf("%w: %s in %s group", errors.ErrPermission, user.Role, group.Model)
	}

	if _, ok := s.session(meetingID, groupID, userID); ok {
		s.log.Warn("session duplicated", "meetingId", meetingID, "groupId", groupID, "userId", userID)
		return nil, fmt.Errorf("%w: session for %s", errors.ErrDuplicate, userID)
	}

	if err := aggregate(s.onSessionCreate(ctx, meetingID, groupID)); err != nil {
		s.log.Error("session creating failed", "meetingId", meetingID, "groupId", groupID, "userId", userID, "error", err)
		return nil, fmt.Errorf("%w: evicting sessions in group %s: %v", errors.ErrCapacity, groupID, err)
	}

	expiration := s.now().Add(s.sessionTTL)
	data, err := s.api.Call(ctx, "createSession", etherpad.Params{
		"groupID":    groupID,
		"authorID":   user.AuthorID,
		"validUntil": expiration.UnixMilli(),
	})
	if err != nil {
		s.log.Error("session creating failed", "meetingId", meetingID, "groupId", groupID, "userId", userID, "error", err)
		return nil, fmt.Errorf("creating session for %s: %w", userID, err)
	}
	sessionID := data.String("sessionID")

	session := &domain.Session{
		SessionID:  sessionID,
		Expiration: expiration,
	}

	s.mu.Lock()
	meeting, ok := s.meetings[meetingID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: meeting %s", errors.ErrMissingEntity, meetingID)
	}
	liveGroup, ok := meeting.Groups[groupID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: group %s", errors.ErrMissingEntity, groupID)
	}
	if _, ok := liveGroup.Sessions[userID]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: session for %s", errors.ErrDuplicate, userID)
	}
	liveGroup.Sessions[userID] = session
	s.mu.Unlock()

	s.log.Debug("session created", "meetingId", meetingID, "groupId", groupID, "userId", userID, "sessionId", sessionID)
	s.emitter.Emit(contract.SessionCreated, meetingID, map[string]any{
		"groupId":   groupID,
		"userId":    userID,
		"sessionId": sessionID,
	})

	return session, nil
}

// DeleteSession removes the remote session then the local record. A missing
// session resolves as a no-op, so cascades converge even when the remote
// state already did.
func (s *Store) DeleteSession(ctx context.Context, meetingID, groupID, userID string) error {
	session, ok := s.session(meetingID, groupID, userID)
	if !ok {
		s.log.Warn("session missing", "meetingId", meetingID, "groupId", groupID, "userId", userID)
		return nil
	}

	if _, err := s.api.Call(ctx, "deleteSession", etherpad.Params{"sessionID": session.SessionID}); err != nil {
		s.log.Error("session deleting failed", "meetingId", meetingID, "groupId", groupID, "userId", userID,
			"sessionId", session.SessionID, "error", err)
		return fmt.Errorf("deleting session %s: %w", session.SessionID, err)
	}

	s.mu.Lock()
	if meeting, ok := s.meetings[meetingID]; ok {
		if group, ok := meeting.Groups[groupID]; ok {
			delete(group.Sessions, userID)
		}
	}
	s.mu.Unlock()

	s.log.Debug("session deleted", "meetingId", meetingID, "groupId", groupID, "userId", userID, "sessionId", session.SessionID)
	s.emitter.Emit(contract.SessionDeleted, meetingID, map[string]any{
		"groupId":   groupID,
		"userId":    userID,
		"sessionId": session.SessionID,
	})

	return nil
}
