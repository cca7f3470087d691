// Package store is the hierarchical lifecycle manager of the pads bridge:
// meetings own users and groups, groups own pads and sessions. It enforces
// the permission and capacity invariants, runs the cascading side effects
// they trigger, and is the only component mutating the hierarchy or the
// address mapper.
//
// Concurrency model: a single mutex guards the in-memory hierarchy, but it is
// never held across a remote call. Remote call boundaries are therefore the
// interleaving points between concurrently handled bus messages, and two
// operations racing on the same entity can interleave there. That window is
// inherited from the upstream design and deliberately not closed here.
package store

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"bbb-pads/contract"
	"bbb-pads/domain"
	"bbb-pads/mapper"
)

type Store struct {
	mu       sync.Mutex
	log      *slog.Logger
	api      contract.Caller
	mapper   *mapper.Mapper
	emitter  contract.Emitter
	meetings map[string]*domain.Meeting

	sessionTTL     time.Duration
	updateThrottle time.Duration

	// now is swapped in tests to pin session expirations.
	now func() time.Time
}

type Options struct {
	SessionTTL     time.Duration
	UpdateThrottle time.Duration
}

func New(api contract.Caller, m *mapper.Mapper, emitter contract.Emitter, log *slog.Logger, opts Options) *Store {
	return &Store{
		log:            log,
		api:            api,
		mapper:         m,
		emitter:        emitter,
		meetings:       make(map[string]*domain.Meeting),
		sessionTTL:     opts.SessionTTL,
		updateThrottle: opts.UpdateThrottle,
		now:            time.Now,
	}
}

// Size reports entity counts for the monitor.
type Size struct {
	Meetings int
	Users    int
	Groups   int
	Pads     int
	Sessions int
}

func (s *Store) Size() Size {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := Size{Meetings: len(s.meetings)}
	for _, meeting := range s.meetings {
		size.Users += len(meeting.Users)
		size.Groups += len(meeting.Groups)
		for _, group := range meeting.Groups {
			size.Pads += len(group.Pads)
			size.Sessions += len(group.Sessions)
		}
	}

	return size
}

// --- locked accessors ---
//
// Every read or mutation of the hierarchy goes through one of these helpers,
// so public operations never hold the mutex while composing each other or
// while calling the gateway.

func (s *Store) meeting(meetingID string) (*domain.Meeting, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	return meeting, ok
}

func (s *Store) hasMeeting(meetingID string) bool {
	_, ok := s.meeting(meetingID)
	if !ok {
		s.log.Warn("meeting missing", "meetingId", meetingID)
	}

	return ok
}

func (s *Store) user(meetingID, userID string) (*domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return nil, false
	}
	user, ok := meeting.Users[userID]

	return user, ok
}

func (s *Store) hasUser(meetingID, userID string) bool {
	_, ok := s.user(meetingID, userID)
	if !ok {
		s.log.Warn("user missing", "meetingId", meetingID, "userId", userID)
	}

	return ok
}

func (s *Store) group(meetingID, groupID string) (*domain.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return nil, false
	}
	group, ok := meeting.Groups[groupID]

	return group, ok
}

func (s *Store) hasGroup(meetingID, groupID string) bool {
	_, ok := s.group(meetingID, groupID)
	if !ok {
		s.log.Warn("group missing", "meetingId", meetingID, "groupId", groupID)
	}

	return ok
}

func (s *Store) session(meetingID, groupID, userID string) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return nil, false
	}
	group, ok := meeting.Groups[groupID]
	if !ok {
		return nil, false
	}
	session, ok := group.Sessions[userID]

	return session, ok
}

func (s *Store) pad(meetingID, groupID, padID string) (*domain.Pad, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return nil, false
	}
	group, ok := meeting.Groups[groupID]
	if !ok {
		return nil, false
	}
	pad, ok := group.Pads[padID]

	return pad, ok
}

func (s *Store) userIDs(meetingID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return nil
	}

	return lo.Keys(meeting.Users)
}

func (s *Store) groupIDs(meetingID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return nil
	}

	return lo.Keys(meeting.Groups)
}

func (s *Store) padIDs(meetingID, groupID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return nil
	}
	group, ok := meeting.Groups[groupID]
	if !ok {
		return nil
	}

	return lo.Keys(group.Pads)
}

type sessionSeat struct {
	userID     string
	expiration time.Time
}

// sessionSeats snapshots the group's sessions ordered oldest first.
func (s *Store) sessionSeats(meetingID, groupID string) []sessionSeat {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return nil
	}
	group, ok := meeting.Groups[groupID]
	if !ok {
		return nil
	}

	seats := lo.MapToSlice(group.Sessions, func(userID string, session *domain.Session) sessionSeat {
		return sessionSeat{userID: userID, expiration: session.Expiration}
	})
	sort.Slice(seats, func(i, j int) bool {
		return seats[i].expiration.Before(seats[j].expiration)
	})

	return seats
}

// findGroup resolves a group by its external identity within a meeting.
func (s *Store) findGroup(meetingID, externalID string, model domain.Model) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return "", false
	}
	for groupID, group := range meeting.Groups {
		if group.ExternalID == externalID && group.Model == model {
			return groupID, true
		}
	}

	return "", false
}

func (s *Store) isMeetingLocked(meetingID string) bool {
	meeting, ok := s.meeting(meetingID)
	if !ok {
		return true
	}

	return meeting.Locked
}

func (s *Store) isUserLocked(meetingID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return true
	}
	user, ok := meeting.Users[userID]
	if !ok {
		return true
	}

	return user.Locked
}

func (s *Store) userRole(meetingID, userID string) (domain.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return "", false
	}
	user, ok := meeting.Users[userID]
	if !ok {
		return "", false
	}

	return user.Role, true
}

func (s *Store) groupModel(meetingID, groupID string) (domain.Model, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, ok := s.meetings[meetingID]
	if !ok {
		return "", false
	}
	group, ok := meeting.Groups[groupID]
	if !ok {
		return "", false
	}

	return group.Model, true
}

// aggregate runs all cascade children and fails if any of them failed.
// Children that succeeded stay applied; there is no rollback.
func aggregate(children []func() error) error {
	if len(children) == 0 {
		return nil
	}

	errs := make([]error, len(children))
	var wg sync.WaitGroup
	for i, child := range children {
		wg.Add(1)
		go func(i int, child func() error) {
			defer wg.Done()
			errs[i] = child()
		}(i, child)
	}
	wg.Wait()

	return errors.Join(errs...)
}
