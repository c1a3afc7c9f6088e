// Package notify delivers the emails triggered by contact submissions:
// an alert to the studio and an acknowledgement to the sender.
package notify

import (
	"context"
	"errors"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
)

// ErrDisabled is returned by SendTest when email delivery is switched off.
var ErrDisabled = errors.New("email delivery is disabled")

// Notifier sends contact-related email.
type Notifier interface {
	// NotifyAdmin alerts the studio inbox about a new submission.
	NotifyAdmin(ctx context.Context, msg *model.ContactMessage) error
	// Acknowledge confirms receipt to the person who submitted msg.
	Acknowledge(ctx context.Context, msg *model.ContactMessage) error
	// SendTest sends a diagnostic message to the given address.
	SendTest(ctx context.Context, to string) error
}

// Nop is the Notifier used when EMAIL_ENABLED is false. Contact
// submissions still succeed; nothing is sent.
type Nop struct{}

func (Nop) NotifyAdmin(context.Context, *model.ContactMessage) error { return nil }
func (Nop) Acknowledge(context.Context, *model.ContactMessage) error { return nil }
func (Nop) SendTest(context.Context, string) error                   { return ErrDisabled }
