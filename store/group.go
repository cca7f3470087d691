package store

import (
	"context"
	"fmt"

	"bbb-pads/contract"
	"bbb-pads/domain"
	"bbb-pads/errors"
	"bbb-pads/etherpad"
)

// CreateGroup allocates a remote group identity for the external collection.
// A group is never recreated for the same (externalID, model) within a
// meeting: duplicates are rejected both before the remote call and again
// before insertion, so two racing creates settle on exactly one winner.
func (s *Store) CreateGroup(ctx context.Context, meetingID, externalID string, model domain.Model) (string, error) {
	if !model.Valid() {
		return "", fmt.Errorf("%w: unknown group model %q", errors.ErrValidation, model)
	}
	if !s.hasMeeting(meetingID) {
		return "", fmt.Errorf("%w: meeting %s", errors.ErrMissingEntity, meetingID)
	}
	if _, ok := s.findGroup(meetingID, externalID, model); ok {
		s.log.Warn("group duplicated", "meetingId", meetingID, "externalId", externalID, "model", model)
		return "", fmt.Errorf("%w: group %s/%s", errors.ErrDuplicate, externalID, model)
	}

	data, err := s.api.Call(ctx, "createGroup", nil)
	if err != nil {
		s.log.Error("group creating failed", "meetingId", meetingID, "externalId", externalID, "error", err)
		return "", fmt.Errorf("creating group %s: %w", externalID, err)
	}
	groupID := data.String("groupID")

	s.mu.Lock()
	meeting, ok := s.meetings[meetingID]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: meeting %s", errors.ErrMissingEntity, meetingID)
	}
	for _, group := range meeting.Groups {
		if group.ExternalID == externalID && group.Model == model {
			s.mu.Unlock()
			s.log.Warn("group duplicated", "meetingId", meetingID, "externalId", externalID, "model", model)
			return "", fmt.Errorf("%w: group %s/%s", errors.ErrDuplicate, externalID, model)
		}
	}
	meeting.Groups[groupID] = domain.NewGroup(externalID, model)
	s.mu.Unlock()

	s.log.Debug("group created", "meetingId", meetingID, "externalId", externalID, "groupId", groupID, "model", model)
	s.emitter.Emit(contract.GroupCreated, meetingID, map[string]any{
		"externalId": externalID,
		"groupId":    groupID,
	})

	return groupID, nil
}

// DeleteGroup cascades session eviction, then pad removal, then drops the
// group record. The remote group itself is left behind for the remote service
// to reconcile, matching the upstream behavior.
func (s *Store) DeleteGroup(ctx context.Context, meetingID, groupID string) error {
	if !s.hasGroup(meetingID, groupID) {
		return nil
	}

	children := make([]func() error, 0)
	for _, seat := range s.sessionSeats(meetingID, groupID) {
		userID := seat.userID
		children = append(children, func() error {
			return s.DeleteSession(ctx, meetingID, groupID, userID)
		})
	}
	if err := aggregate(children); err != nil {
		s.log.Error("group deleting failed", "meetingId", meetingID, "groupId", groupID, "error", err)
		return fmt.Errorf("deleting group %s: %w", groupID, err)
	}

	for _, padID := range s.padIDs(meetingID, groupID) {
		s.deletePad(meetingID, groupID, padID)
	}

	s.mu.Lock()
	if meeting, ok := s.meetings[meetingID]; ok {
		delete(meeting.Groups, groupID)
	}
	s.mu.Unlock()
	s.log.Debug("group deleted", "meetingId", meetingID, "groupId", groupID)

	return nil
}

// AppendText appends to a pad remotely without touching the local snapshot;
// the snapshot advances when the resulting update notification arrives.
func (s *Store) AppendText(ctx context.Context, meetingID, groupID, name, text string) error {
	if !s.hasGroup(meetingID, groupID) {
		return fmt.Errorf("%w: group %s", errors.ErrMissingEntity, groupID)
	}

	padID := domain.PadID(groupID, name)
	if _, ok := s.pad(meetingID, groupID, padID); !ok {
		s.log.Warn("pad missing", "meetingId", meetingID, "groupId", groupID, "padId", padID)
		return fmt.Errorf("%w: pad %s", errors.ErrMissingEntity, padID)
	}

	if _, err := s.api.Call(ctx, "appendText", etherpad.Params{"padID": padID, "text": text}); err != nil {
		s.log.Error("pad appending failed", "meetingId", meetingID, "padId", padID, "error", err)
		return fmt.Errorf("appending to pad %s: %w", padID, err)
	}

	return nil
}
