package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegram caps a message at 4096 characters
const maxMessageRunes = 4000

const sendTimeout = 10 * time.Second

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramInfra struct {
	bot     sender
	chatIDs []int64
	log     *zap.Logger
}

// NewTelegramInfra logs in with token; the caller falls back to Nop on error.
func NewTelegramInfra(token string, chatIDs []int64, log *zap.Logger) (*TelegramInfra, error) {
	if len(chatIDs) == 0 {
		return nil, fmt.Errorf("no admin chat ids")
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: sendTimeout})
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return &TelegramInfra{bot: bot, chatIDs: chatIDs, log: log}, nil
}

func (i *TelegramInfra) Notify(ctx context.Context, err error, details string) error {
	text := truncate(fmt.Sprintf(
		"❗ voice_convert error\n\nError: %v\n\nDetails: %s",
		err,
		details,
	))

	for _, chatID := range i.chatIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, sendErr := i.bot.Send(tgbotapi.NewMessage(chatID, text)); sendErr != nil {
			i.log.Warn("alert send failed", zap.Int64("chat_id", chatID), zap.Error(sendErr))
			return sendErr
		}
	}

	return nil
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxMessageRunes]) + "…"
}
