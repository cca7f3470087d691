package store

import (
	"context"
	"fmt"

	"bbb-pads/contract"
	"bbb-pads/diff"
	"bbb-pads/domain"
	"bbb-pads/errors"
	"bbb-pads/etherpad"
	"bbb-pads/throttle"
)

// CreatePad allocates the remote group-pad, initializes the local snapshots
// and registers the throttled content poll. Pads are never recreated once
// deleted: a duplicate create is rejected, not merged.
func (s *Store) CreatePad(ctx context.Context, meetingID, groupID, name string) (*domain.Pad, error) {
	if !s.hasGroup(meetingID, groupID) {
		return nil, fmt.Errorf("%w: group %s", errors.ErrMissingEntity, groupID)
	}

	padID := domain.PadID(groupID, name)
	if _, ok := s.pad(meetingID, groupID, padID); ok {
		s.log.Warn("pad duplicated", "meetingId", meetingID, "padId", padID)
		return nil, fmt.Errorf("%w: pad %s", errors.ErrDuplicate, padID)
	}

	_, err := s.api.Call(ctx, "createGroupPad", etherpad.Params{"groupID": groupID, "padName": name})
	if err != nil {
		s.log.Error("pad creating failed", "meetingId", meetingID, "padId", padID, "error", err)
		return nil, fmt.Errorf("creating pad %s: %w", padID, err)
	}

	pad := &domain.Pad{
		Update: throttle.New(s.updateThrottle),
	}

	s.mu.Lock()
	meeting, ok := s.meetings[meetingID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: meeting %s", errors.ErrMissingEntity, meetingID)
	}
	group, ok := meeting.Groups[groupID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: group %s", errors.ErrMissingEntity, groupID)
	}
	if _, ok := group.Pads[padID]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: pad %s", errors.ErrDuplicate, padID)
	}
	group.Pads[padID] = pad
	s.mu.Unlock()

	s.mapper.AddPad(meetingID, groupID, padID)
	s.log.Debug("pad created", "meetingId", meetingID, "groupId", groupID, "padId", padID)
	s.emitter.Emit(contract.PadCreated, meetingID, map[string]any{
		"groupId": groupID,
		"padId":   padID,
		"name":    name,
	})

	return pad, nil
}

// deletePad is local only: the remote pad dies with its remote group. It runs
// inside group cascades.
func (s *Store) deletePad(meetingID, groupID, padID string) {
	pad, ok := s.pad(meetingID, groupID, padID)
	if !ok {
		s.log.Warn("pad missing", "meetingId", meetingID, "groupId", groupID, "padId", padID)
		return
	}

	pad.Update.Stop()
	s.mapper.RemovePad(padID)

	s.mu.Lock()
	if meeting, ok := s.meetings[meetingID]; ok {
		if group, ok := meeting.Groups[groupID]; ok {
			delete(group.Pads, padID)
		}
	}
	s.mu.Unlock()
	s.log.Debug("pad deleted", "meetingId", meetingID, "groupId", groupID, "padId", padID)
}

// UpdatePad processes a remote update notification. The acting user resolves
// through the mapper, or to the synthetic system actor when the notification
// carries no author. Captions pads diff their plain text synchronously; the
// HTML content poll goes through the pad's throttle.
func (s *Store) UpdatePad(padID, authorID string, rev any, changeset any, text string) error {
	userID := "system"
	if authorID != "" {
		user, ok := s.mapper.GetUser(authorID)
		if !ok {
			s.log.Warn("author unmapped", "padId", padID, "authorId", authorID)
			return fmt.Errorf("%w: author %s", errors.ErrMissingEntity, authorID)
		}
		userID = user.UserID
	}

	ref, ok := s.mapper.GetPad(padID)
	if !ok {
		s.log.Warn("pad unmapped", "padId", padID)
		return fmt.Errorf("%w: pad %s", errors.ErrMissingEntity, padID)
	}
	meetingID, groupID := ref.MeetingID, ref.GroupID

	s.patchPad(meetingID, groupID, padID, userID, text)

	if pad, ok := s.pad(meetingID, groupID, padID); ok {
		pad.Update.Trigger(func() {
			s.pollPadContent(context.Background(), meetingID, groupID, padID, rev)
		})
	}

	s.emitter.Emit(contract.PadUpdated, meetingID, map[string]any{
		"groupId":   groupID,
		"padId":     padID,
		"userId":    userID,
		"rev":       rev,
		"changeset": changeset,
	})

	return nil
}

// patchPad diffs the plain-text snapshot of captions pads and emits the
// resulting patch. Notes pads propagate through the HTML poll only.
func (s *Store) patchPad(meetingID, groupID, padID, userID, text string) {
	model, ok := s.groupModel(meetingID, groupID)
	if !ok || model != domain.Captions {
		return
	}

	pad, ok := s.pad(meetingID, groupID, padID)
	if !ok {
		return
	}

	s.mu.Lock()
	change := diff.Compute(pad.Text, text)
	if change == nil {
		s.mu.Unlock()
		return
	}
	pad.Text = text
	s.mu.Unlock()

	s.log.Debug("pad patch", "meetingId", meetingID, "groupId", groupID, "padId", padID, "userId", userID,
		"start", change.Start, "end", change.End)
	s.emitter.Emit(contract.PadPatch, meetingID, map[string]any{
		"groupId": groupID,
		"padId":   padID,
		"userId":  userID,
		"start":   change.Start,
		"end":     change.End,
		"text":    change.Text,
	})
}

// pollPadContent fetches the pad's HTML at rev, diffs it against the stored
// snapshot and emits a content event when something changed. It runs from the
// throttle's timer goroutine; failures are logged, not propagated.
func (s *Store) pollPadContent(ctx context.Context, meetingID, groupID, padID string, rev any) {
	if !s.hasGroup(meetingID, groupID) {
		return
	}

	params := etherpad.Params{"padID": padID}
	if rev != nil {
		params["rev"] = rev
	}
	data, err := s.api.Call(ctx, "getHTML", params)
	if err != nil {
		s.log.Error("pad content failed", "meetingId", meetingID, "groupId", groupID, "padId", padID, "error", err)
		return
	}
	html := data.String("html")

	pad, ok := s.pad(meetingID, groupID, padID)
	if !ok {
		return
	}

	s.mu.Lock()
	change := diff.Compute(pad.HTML, html)
	if change == nil {
		s.mu.Unlock()
		return
	}
	pad.HTML = html
	s.mu.Unlock()

	s.log.Info("pad content", "meetingId", meetingID, "groupId", groupID, "padId", padID, "rev", rev,
		"start", change.Start, "end", change.End)
	s.emitter.Emit(contract.PadContent, meetingID, map[string]any{
		"groupId": groupID,
		"padId":   padID,
		"rev":     rev,
		"start":   change.Start,
		"end":     change.End,
		"text":    change.Text,
	})
}
