// Package mapper is the reverse index from remote-assigned identifiers back
// to internal ones. Inbound update notifications carry only the remote author
// and pad ids; the store resolves them here. The store is the sole writer, so
// an entry exists exactly as long as its target entity does.
package mapper

import (
	"log/slog"
	"sync"
)

type UserRef struct {
	MeetingID string
	UserID    string
}

type PadRef struct {
	MeetingID string
	GroupID   string
}

type Mapper struct {
	mu    sync.RWMutex
	log   *slog.Logger
	users map[string]UserRef
	pads  map[string]PadRef
}

func New(log *slog.Logger) *Mapper {
	return &Mapper{
		log:   log,
		users: make(map[string]UserRef),
		pads:  make(map[string]PadRef),
	}
}

// Size reports entry counts for the monitor.
func (m *Mapper) Size() (users, pads int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.users), len(m.pads)
}

func (m *Mapper) GetUser(authorID string) (UserRef, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[authorID]
	return user, ok
}

func (m *Mapper) GetPad(padID string) (PadRef, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pad, ok := m.pads[padID]
	return pad, ok
}

func (m *Mapper) AddUser(meetingID, userID, authorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Debug("mapper user added", "meetingId", meetingID, "userId", userID, "authorId", authorID)
	m.users[authorID] = UserRef{MeetingID: meetingID, UserID: userID}
}

func (m *Mapper) RemoveUser(authorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[authorID]; ok {
		m.log.Debug("mapper user removed", "meetingId", user.MeetingID, "userId", user.UserID, "authorId", authorID)
		delete(m.users, authorID)
	}
}

func (m *Mapper) AddPad(meetingID, groupID, padID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Debug("mapper pad added", "meetingId", meetingID, "groupId", groupID, "padId", padID)
	m.pads[padID] = PadRef{MeetingID: meetingID, GroupID: groupID}
}

func (m *Mapper) RemovePad(padID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pad, ok := m.pads[padID]; ok {
		m.log.Debug("mapper pad removed", "meetingId", pad.MeetingID, "groupId", pad.GroupID, "padId", padID)
		delete(m.pads, padID)
	}
}
