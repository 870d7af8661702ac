package notify

import (
	"context"

	"secondserving/internal/logging"
)

// Log writes messages to the process log. Used when no transport is configured.
type Log struct{}

func (Log) Channel() string { return "log" }

func (Log) Notify(_ context.Context, msg Message) error {
	if msg.Phone == "" && msg.TelegramChatID == 0 {
		return ErrNoRecipient
	}
	logging.For(logging.Notify).
		WithField("to", msg.Phone).
		WithField("action", msg.ActionURL).
		Info(msg.Body)
	return nil
}
