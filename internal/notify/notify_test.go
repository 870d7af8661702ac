package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"secondserving/internal/logging"
	"secondserving/internal/models"
)

func init() {
	logging.Silence()
}

type mockTwilio struct {
	mock.Mock
}

func (m *mockTwilio) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	args := m.Called(*params.To, *params.From, *params.Body)
	return &twilioApi.ApiV2010Message{}, args.Error(0)
}

type mockBot struct {
	mock.Mock
}

func (m *mockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	args := m.Called(msg.ChatID, msg.Text, msg.ReplyMarkup != nil)
	return tgbotapi.Message{}, args.Error(0)
}

func TestWhatsAppNormalizesRecipient(t *testing.T) {
	api := new(mockTwilio)
	api.On("CreateMessage", "whatsapp:+919876543210", "whatsapp:+14155238886", "hello\n\nhttps://x/accept").Return(nil)

	w := newWhatsApp(api, "+14155238886")
	err := w.Notify(context.Background(), Message{Phone: "+91 98765-43210", Body: "hello", ActionURL: "https://x/accept"})

	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestWhatsAppWithoutPhone(t *testing.T) {
	w := newWhatsApp(new(mockTwilio), "whatsapp:+1")
	assert.ErrorIs(t, w.Notify(context.Background(), Message{Body: "hi"}), ErrNoRecipient)
}

func TestTelegramNotifyAndPost(t *testing.T) {
	bot := new(mockBot)
	bot.On("Send", int64(42), "hi", false).Return(nil)
	bot.On("Send", int64(-100), "volunteers needed", true).Return(nil)

	tg := &Telegram{api: bot, groupChat: -100}
	require.NoError(t, tg.Notify(context.Background(), Message{TelegramChatID: 42, Body: "hi"}))
	require.NoError(t, tg.Post(context.Background(), Message{Body: "volunteers needed", ActionURL: "https://x"}))
	assert.ErrorIs(t, tg.Notify(context.Background(), Message{Phone: "9876543210"}), ErrNoRecipient)

	bot.AssertExpectations(t)
}

func TestTelegramPostWithoutGroupIsNoop(t *testing.T) {
	bot := new(mockBot)
	tg := &Telegram{api: bot}
	require.NoError(t, tg.Post(context.Background(), Message{Body: "x"}))
	bot.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

type stubNotifier struct {
	channel string
	err     error
	calls   int
}

func (s *stubNotifier) Channel() string { return s.channel }

func (s *stubNotifier) Notify(context.Context, Message) error {
	s.calls++
	return s.err
}

func TestFanout(t *testing.T) {
	failing := &stubNotifier{channel: "whatsapp", err: errors.New("boom")}
	skipped := &stubNotifier{channel: "telegram", err: ErrNoRecipient}
	ok := &stubNotifier{channel: "log"}

	assert.NoError(t, Fanout{failing, skipped, ok}.Notify(context.Background(), Message{}))
	assert.Equal(t, 1, ok.calls)

	err := Fanout{failing, skipped}.Notify(context.Background(), Message{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whatsapp: boom")

	assert.ErrorIs(t, Fanout{skipped}.Notify(context.Background(), Message{}), ErrNoRecipient)
}

func TestVolunteerWantedCarriesAcceptLink(t *testing.T) {
	donation := &models.Donation{
		FoodDetails:    models.FoodDetails{Category: "cooked rice", Quantity: 5, Unit: "kg"},
		PickupLocation: models.PickupLocation{Address: "MG Road"},
	}
	volunteer := &models.Account{FullName: "Asha", PhoneNumber: "9876543210"}

	msg := VolunteerWanted(volunteer, donation, "https://app/volunteer/accept/abc")

	assert.Equal(t, "9876543210", msg.Phone)
	assert.Equal(t, "https://app/volunteer/accept/abc", msg.ActionURL)
	assert.Contains(t, msg.Body, "*Asha*")
	assert.Contains(t, msg.Body, "No description provided")
	assert.Contains(t, msg.Body, "https://app/volunteer/accept/abc")
}
