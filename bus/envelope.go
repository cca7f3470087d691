// Package bus owns the JSON message surface of the bridge: decoding inbound
// conferencing events into store operations and wrapping store side effects
// into outbound envelopes. The transport carrying the payloads lives behind
// contract.Publisher and the consume loop feeding Handle.
package bus

import "encoding/json"

// Message is the inbound envelope. Only core is read; anything the sender
// wrapped around it is ignored.
type Message struct {
	Core *Core `json:"core"`
}

type Core struct {
	Header *Header         `json:"header"`
	Body   json.RawMessage `json:"body"`
}

type Header struct {
	MeetingID string `json:"meetingId,omitempty"`
	Name      string `json:"name"`
}

// Outbound is the envelope published for store side effects. The field layout
// is fixed wire format shared with the consuming conferencing system.
type Outbound struct {
	Envelope Envelope     `json:"envelope"`
	Core     OutboundCore `json:"core"`
}

type Envelope struct {
	Name      string  `json:"name"`
	Routing   Routing `json:"routing"`
	Timestamp int64   `json:"timestamp"`
}

type Routing struct {
	Sender string `json:"sender"`
}

type OutboundCore struct {
	Header Header `json:"header"`
	Body   any    `json:"body"`
}
