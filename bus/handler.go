package bus

import (
	"context"
	"encoding/json"
	"log/slog"

	"bbb-pads/domain"
	"bbb-pads/store"
)

// Inbound message names.
const (
	meetingCreated = "MeetingCreatedEvtMsg"
	meetingEnding  = "MeetingEndingEvtMsg"
	meetingLocked  = "LockSettingsInMeetingChangedEvtMsg"
	userJoined     = "UserJoinedMeetingEvtMsg"
	userLeft       = "UserLeftMeetingEvtMsg"
	userLocked     = "UserLockedInMeetingEvtMsg"
	userUpdated    = "UserRoleChangedEvtMsg"
	groupCreate    = "PadCreateGroupCmdMsg"
	padCreate      = "PadCreateCmdMsg"
	sessionCreate  = "PadSessionCreateCmdMsg"
	sessionDelete  = "PadSessionDeleteCmdMsg"
	padAppend      = "PadAppendCmdMsg"
	padUpdated     = "PadUpdateSysMsg"
)

// Handler decodes inbound messages and dispatches them to store operations.
type Handler struct {
	log   *slog.Logger
	store *store.Store
}

func NewHandler(s *store.Store, log *slog.Logger) *Handler {
	return &Handler{log: log, store: s}
}

// Handle processes one raw bus payload. Malformed payloads and unknown
// message names are dropped; failed store operations surface their error to
// the consume loop.
func (h *Handler) Handle(ctx context.Context, raw []byte) error {
	var message Message
	if err := json.Unmarshal(raw, &message); err != nil {
		h.log.Warn("message malformed", "error", err)
		return nil
	}
	if message.Core == nil || message.Core.Header == nil || message.Core.Body == nil {
		h.log.Warn("message incomplete", "payload", string(raw))
		return nil
	}

	header := message.Core.Header
	body := message.Core.Body

	switch header.Name {
	case meetingCreated:
		return h.onMeetingCreated(body)
	case meetingEnding:
		return h.store.DeleteMeeting(ctx, header.MeetingID)
	case meetingLocked:
		return h.onMeetingLocked(ctx, header.MeetingID, body)
	case userJoined:
		return h.onUserJoined(ctx, header.MeetingID, body)
	case userLeft:
		return h.onUserLeft(ctx, header.MeetingID, body)
	case userLocked:
		return h.onUserLocked(ctx, header.MeetingID, body)
	case userUpdated:
		return h.onUserUpdated(ctx, header.MeetingID, body)
	case groupCreate:
		return h.onGroupCreate(ctx, header.MeetingID, body)
	case padCreate:
		return h.onPadCreate(ctx, header.MeetingID, body)
	case sessionCreate:
		return h.onSessionCreate(ctx, header.MeetingID, body)
	case sessionDelete:
		return h.onSessionDelete(ctx, header.MeetingID, body)
	case padAppend:
		return h.onPadAppend(ctx, header.MeetingID, body)
	case padUpdated:
		return h.onPadUpdated(body)
	default:
		h.log.Debug("message ignored", "name", header.Name)
		return nil
	}
}

func (h *Handler) onMeetingCreated(raw json.RawMessage) error {
	var body struct {
		Props struct {
			MeetingProp struct {
				IntID string `json:"intId"`
			} `json:"meetingProp"`
			LockSettingsProps struct {
				DisableNotes bool `json:"disableNotes"`
			} `json:"lockSettingsProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", meetingCreated, "error", err)
		return nil
	}

	_, err := h.store.CreateMeeting(body.Props.MeetingProp.IntID, body.Props.LockSettingsProps.DisableNotes)
	return err
}

func (h *Handler) onMeetingLocked(ctx context.Context, meetingID string, raw json.RawMessage) error {
	var body struct {
		DisableNotes bool `json:"disableNotes"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", meetingLocked, "error", err)
		return nil
	}

	if body.DisableNotes {
		return h.store.LockMeeting(ctx, meetingID)
	}
	return h.store.UnlockMeeting(meetingID)
}

func (h *Handler) onUserJoined(ctx context.Context, meetingID string, raw json.RawMessage) error {
	var body struct {
		IntID  string `json:"intId"`
		Name   string `json:"name"`
		Role   string `json:"role"`
		Locked bool   `json:"locked"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", userJoined, "error", err)
		return nil
	}

	role := domain.Viewer
	if body.Role == string(domain.Moderator) {
		role = domain.Moderator
	}

	_, err := h.store.CreateUser(ctx, meetingID, body.IntID, body.Name, role, body.Locked)
	return err
}

func (h *Handler) onUserLeft(ctx context.Context, meetingID string, raw json.RawMessage) error {
	var body struct {
		IntID string `json:"intId"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", userLeft, "error", err)
		return nil
	}

	return h.store.DeleteUser(ctx, meetingID, body.IntID)
}

func (h *Handler) onUserLocked(ctx context.Context, meetingID string, raw json.RawMessage) error {
	var body struct {
		UserID string `json:"userId"`
		Locked bool   `json:"locked"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", userLocked, "error", err)
		return nil
	}

	if body.Locked {
		return h.store.LockUser(ctx, meetingID, body.UserID)
	}
	return h.store.UnlockUser(meetingID, body.UserID)
}

func (h *Handler) onUserUpdated(ctx context.Context, meetingID string, raw json.RawMessage) error {
	var body struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", userUpdated, "error", err)
		return nil
	}

	if body.Role == string(domain.Moderator) {
		return h.store.PromoteUser(meetingID, body.UserID)
	}
	return h.store.DemoteUser(ctx, meetingID, body.UserID)
}

func (h *Handler) onGroupCreate(ctx context.Context, meetingID string, raw json.RawMessage) error {
	var body struct {
		ExternalID string `json:"externalId"`
		Model      string `json:"model"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", groupCreate, "error", err)
		return nil
	}

	_, err := h.store.CreateGroup(ctx, meetingID, body.ExternalID, domain.Model(body.Model))
	return err
}

func (h *Handler) onPadCreate(ctx context.Context, meetingID string, raw json.RawMessage) error {
	var body struct {
		GroupID string `json:"groupId"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", padCreate, "error", err)
		return nil
	}

	_, err := h.store.CreatePad(ctx, meetingID, body.GroupID, body.Name)
	return err
}

func (h *Handler) onSessionCreate(ctx context.Context, meetingID string, raw json.RawMessage) error {
	var body struct {
		GroupID string `json:"groupId"`
		UserID  string `json:"userId"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", sessionCreate, "error", err)
		return nil
	}

	_, err := h.store.CreateSession(ctx, meetingID, body.GroupID, body.UserID)
	return err
}

func (h *Handler) onSessionDelete(ctx context.Context, meetingID string, raw json.RawMessage) error {
	var body struct {
		GroupID string `json:"groupId"`
		UserID  string `json:"userId"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", sessionDelete, "error", err)
		return nil
	}

	return h.store.DeleteSession(ctx, meetingID, body.GroupID, body.UserID)
}

func (h *Handler) onPadAppend(ctx context.Context, meetingID string, raw json.RawMessage) error {
	var body struct {
		GroupID string `json:"groupId"`
		Name    string `json:"name"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", padAppend, "error", err)
		return nil
	}

	return h.store.AppendText(ctx, meetingID, body.GroupID, body.Name, body.Text)
}

func (h *Handler) onPadUpdated(raw json.RawMessage) error {
	var body struct {
		PadID     string `json:"padId"`
		AuthorID  string `json:"authorId"`
		Rev       any    `json:"rev"`
		Changeset any    `json:"changeset"`
		Text      string `json:"text"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.log.Warn("message malformed", "name", padUpdated, "error", err)
		return nil
	}

	return h.store.UpdatePad(body.PadID, body.AuthorID, body.Rev, body.Changeset, body.Text)
}
