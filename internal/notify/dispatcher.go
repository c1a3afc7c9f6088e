package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
)

// Dispatcher sends contact notifications in the background. The admin alert
// and the acknowledgement are independent: one failing does not stop the
// other, and neither is visible to the submitter.
type Dispatcher struct {
	n       Notifier
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher wraps n. Each email gets its own timeout.
func NewDispatcher(n Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{n: n, timeout: timeout}
}

// Dispatch starts delivery of both emails for msg and returns immediately.
func (d *Dispatcher) Dispatch(msg *model.ContactMessage) {
	c := *msg
	d.run("admin_notification", c.ID, func(ctx context.Context) error { return d.n.NotifyAdmin(ctx, &c) })
	d.run("acknowledgement", c.ID, func(ctx context.Context) error { return d.n.Acknowledge(ctx, &c) })
}

func (d *Dispatcher) run(kind, id string, send func(context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return send(ctx)
		}()
		if err != nil {
			slog.Warn("contact email failed", "kind", kind, "contact_id", id, "error", err)
			return
		}
		slog.Debug("contact email sent", "kind", kind, "contact_id", id)
	}()
}

// Wait blocks until pending deliveries finish or ctx is done.
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
		return ctx.Err()
	}
}
