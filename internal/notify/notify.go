// Package notify delivers best-effort messages to donors, volunteers and
// hunger-spot contacts over WhatsApp and Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"

	"secondserving/internal/metrics"
)

// ErrNoRecipient means the channel has no address for this recipient.
var ErrNoRecipient = errors.New("notify: no recipient address for channel")

type Message struct {
	Phone          string
	TelegramChatID int64
	Name           string
	Body           string
	ActionURL      string
	ActionLabel    string
}

type Notifier interface {
	Channel() string
	Notify(ctx context.Context, msg Message) error
}

// GroupPoster broadcasts to a shared chat, such as a volunteer group.
type GroupPoster interface {
	Post(ctx context.Context, msg Message) error
}

// Fanout sends msg on every channel that can address the recipient. It
// succeeds when at least one channel delivered.
type Fanout []Notifier

func (f Fanout) Channel() string { return "fanout" }

func (f Fanout) Notify(ctx context.Context, msg Message) error {
	var errs []error
	delivered := false
	for _, n := range f {
		err := n.Notify(ctx, msg)
		if errors.Is(err, ErrNoRecipient) {
			continue
		}
		metrics.Notification(n.Channel(), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Channel(), err))
			continue
		}
		delivered = true
	}
	if delivered {
		return nil
	}
	if len(errs) == 0 {
		return ErrNoRecipient
	}
	return errors.Join(errs...)
}
