package workers

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"bbb-pads/bus"
	"bbb-pads/contract"
)

// ConsumeWorker is the inbound loop: it pulls raw payloads off the bus and
// feeds them to the handler. Handling failures are logged and the loop moves
// on; a broken consumer crashes the worker so the supervisor restarts it.
type ConsumeWorker struct {
	log      *slog.Logger
	consumer contract.Consumer
	handler  *bus.Handler
}

func NewConsumeWorker(consumer contract.Consumer, handler *bus.Handler, log *slog.Logger) *ConsumeWorker {
	return &ConsumeWorker{
		log:      log,
		consumer: consumer,
		handler:  handler,
	}
}

func (w *ConsumeWorker) Run(ctx context.Context) error {
	w.log.Info("consume loop started")

	for {
		payload, err := w.consumer.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
				w.log.Info("consume loop stopped")
				return nil
			}
			return err
		}

		if err := w.handler.Handle(ctx, payload); err != nil {
			w.log.Error("message handling failed", "error", err)
		}
	}
}
