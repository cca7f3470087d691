package bus

import (
	"encoding/json"
	"log/slog"
	"time"

	"bbb-pads/contract"
)

const senderName = "bbb-pads"

// wireNames is the fixed table from internal event kinds to outbound message
// names. Kinds outside the table are never published.
var wireNames = map[contract.EventKind]string{
	contract.GroupCreated:   "PadGroupCreatedEvtMsg",
	contract.PadCreated:     "PadCreatedEvtMsg",
	contract.PadUpdated:     "PadUpdatedSysMsg",
	contract.PadContent:     "PadContentSysMsg",
	contract.PadPatch:       "PadPatchSysMsg",
	contract.SessionCreated: "PadSessionCreatedEvtMsg",
	contract.SessionDeleted: "PadSessionDeletedSysMsg",
}

// Sender implements contract.Emitter on top of a Publisher.
type Sender struct {
	log *slog.Logger
	pub contract.Publisher

	// now is swapped in tests to pin envelope timestamps.
	now func() time.Time
}

func NewSender(pub contract.Publisher, log *slog.Logger) *Sender {
	return &Sender{
		log: log,
		pub: pub,
		now: time.Now,
	}
}

// Emit wraps the body into the outbound envelope and publishes it. Emission
// is best effort: failures are logged, never propagated back into the store
// operation that caused the side effect.
func (s *Sender) Emit(kind contract.EventKind, meetingID string, body any) {
	name, ok := wireNames[kind]
	if !ok {
		s.log.Warn("message kind unknown", "kind", kind, "meetingId", meetingID)
		return
	}

	payload, err := json.Marshal(Outbound{
		Envelope: Envelope{
			Name:      name,
			Routing:   Routing{Sender: senderName},
			Timestamp: s.now().UnixMilli(),
		},
		Core: OutboundCore{
			Header: Header{MeetingID: meetingID, Name: name},
			Body:   body,
		},
	})
	if err != nil {
		s.log.Error("message encoding failed", "name", name, "meetingId", meetingID, "error", err)
		return
	}

	if err := s.pub.Publish(payload); err != nil {
		s.log.Error("message publishing failed", "name", name, "meetingId", meetingID, "error", err)
		return
	}

	s.log.Debug("message published", "name", name, "meetingId", meetingID)
}
