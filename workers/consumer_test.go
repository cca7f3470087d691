package workers

import (
	"context"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"bbb-pads/bus"
	"bbb-pads/contract"
	"bbb-pads/etherpad"
	"bbb-pads/mapper"
	"bbb-pads/store"
)

type channelConsumer struct {
	payloads chan []byte
}

func (c *channelConsumer) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-c.payloads:
		return payload, nil
	}
}

type nullCaller struct{}

func (nullCaller) Call(context.Context, string, etherpad.Params) (etherpad.Data, error) {
	return etherpad.Data{}, nil
}

type nullEmitter struct{}

func (nullEmitter) Emit(contract.EventKind, string, any) {}

func TestConsumeWorker_DispatchesAndStopsOnCancel(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromString("ERROR")
	s := store.New(nullCaller{}, mapper.New(log), nullEmitter{}, log, store.Options{
		SessionTTL:     time.Hour,
		UpdateThrottle: time.Second,
	})
	consumer := &channelConsumer{payloads: make(chan []byte, 1)}
	worker := NewConsumeWorker(consumer, bus.NewHandler(s, log), log)

	consumer.payloads <- []byte(`{"core":{"header":{"name":"MeetingCreatedEvtMsg"},` +
		`"body":{"props":{"meetingProp":{"intId":"m1"},"lockSettingsProps":{"disableNotes":false}}}}}`)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	req.Eventually(func() bool {
		return s.Size().Meetings == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		// Cancellation is a clean stop, not a crash.
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("worker should stop on context cancellation")
	}
}
