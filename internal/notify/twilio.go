package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"secondserving/internal/phone"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// WhatsApp sends through the Twilio WhatsApp sender.
type WhatsApp struct {
	api  messageCreator
	from string
}

func NewWhatsApp(sid, authToken, from string) *WhatsApp {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: authToken,
	})
	return newWhatsApp(client.Api, from)
}

func newWhatsApp(api messageCreator, from string) *WhatsApp {
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}
	return &WhatsApp{api: api, from: from}
}

func (w *WhatsApp) Channel() string { return "whatsapp" }

func (w *WhatsApp) Notify(ctx context.Context, msg Message) error {
	number := phone.Normalize(msg.Phone)
	if !phone.Valid(number) {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := msg.Body
	if msg.ActionURL != "" && !strings.Contains(body, msg.ActionURL) {
		body += "\n\n" + msg.ActionURL
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone.WhatsApp(number))
	params.SetFrom(w.from)
	params.SetBody(body)

	if _, err := w.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	return nil
}
