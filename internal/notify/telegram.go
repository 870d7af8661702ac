package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type chatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram messages recipients who linked a chat id, and posts volunteer
// broadcasts to the group chat when one is configured.
type Telegram struct {
	api       chatSender
	groupChat int64
}

func NewTelegram(token string, groupChat int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &Telegram{api: api, groupChat: groupChat}, nil
}

func (t *Telegram) Channel() string { return "telegram" }

func (t *Telegram) Notify(ctx context.Context, msg Message) error {
	if msg.TelegramChatID == 0 {
		return ErrNoRecipient
	}
	return t.send(ctx, msg.TelegramChatID, msg)
}

// Post sends msg to the group chat. It is a no-op without one.
func (t *Telegram) Post(ctx context.Context, msg Message) error {
	if t.groupChat == 0 {
		return nil
	}
	return t.send(ctx, t.groupChat, msg)
}

func (t *Telegram) send(ctx context.Context, chatID int64, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := tgbotapi.NewMessage(chatID, msg.Body)
	out.DisableWebPagePreview = true
	if msg.ActionURL != "" {
		label := msg.ActionLabel
		if label == "" {
			label = "Open"
		}
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(label, msg.ActionURL)),
		)
	}
	if _, err := t.api.Send(out); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
