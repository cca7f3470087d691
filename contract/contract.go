//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"bbb-pads/etherpad"
)

// Caller dispatches one validated operation to the remote editing service.
type Caller interface {
	Call(ctx context.Context, method string, params etherpad.Params) (etherpad.Data, error)
}

// EventKind identifies an internal side effect that becomes an outbound bus
// message. The wire-level message name is chosen by the sender's fixed table.
type EventKind string

const (
	GroupCreated   EventKind = "groupCreated"
	PadCreated     EventKind = "padCreated"
	PadUpdated     EventKind = "padUpdated"
	PadContent     EventKind = "padContent"
	PadPatch       EventKind = "padPatch"
	SessionCreated EventKind = "sessionCreated"
	SessionDeleted EventKind = "sessionDeleted"
)

// Emitter turns store side effects into outbound bus messages.
type Emitter interface {
	Emit(kind EventKind, meetingID string, body any)
}

// Publisher is the outbound leg of the message bus. The transport behind it
// is out of scope here; only the JSON payload is owned by this process.
type Publisher interface {
	Publish(message []byte) error
}

// Consumer is the inbound leg. Receive blocks until the next payload or the
// context ends.
type Consumer interface {
	Receive(ctx context.Context) ([]byte, error)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
