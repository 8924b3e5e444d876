package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/metrics"
)

// DefaultSendTimeout bounds a single delivery, sync or async.
const DefaultSendTimeout = 30 * time.Second

// Dispatcher hands messages to a Sink either asynchronously (Fire) or
// synchronously (Deliver). It tracks in-flight async sends so shutdown can
// wait for them.
type Dispatcher struct {
	sink    Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sink Sink, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		sink:    sink,
		logger:  logger,
		metrics: m,
		timeout: DefaultSendTimeout,
	}
}

// Fire sends msg in the background. Failures are logged and counted, never
// returned. One attempt, no retry.
func (d *Dispatcher) Fire(kind string, msg Message) {
	id := uuid.NewString()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.sink.Send(ctx, msg)
		d.metrics.RecordNotification(kind, err)
		if err != nil {
			d.logger.Error("async email delivery failed",
				"dispatch_id", id,
				"kind", kind,
				"to", msg.To,
				"error", err,
			)
			return
		}
		d.logger.Debug("async email delivered", "dispatch_id", id, "kind", kind)
	}()
}

// Deliver sends msg and waits for the outcome, at most the dispatcher
// timeout. Any failure comes back as a DELIVERY_FAILED error.
func (d *Dispatcher) Deliver(ctx context.Context, kind string, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.sink.Send(ctx, msg)
	d.metrics.RecordNotification(kind, err)
	if err != nil {
		if apperr.Is(err, apperr.CodeDeliveryFailed) {
			return err
		}
		return oops.Code(apperr.CodeDeliveryFailed).With("kind", kind).Wrap(err)
	}
	return nil
}

// Wait blocks until every fired message has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return oops.With("operation", "mail_drain").Wrap(ctx.Err())
	}
}
