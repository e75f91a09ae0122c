package error_notificator

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Infra struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewInfraFromEnv — (nil, nil) если ERROR_BOT_TOKEN не задан:
// оповещения просто выключены, это не ошибка.
func NewInfraFromEnv() (*Infra, error) {
	token := os.Getenv("ERROR_BOT_TOKEN")
	if token == "" {
		return nil, nil
	}

	chatID, err := strconv.ParseInt(os.Getenv("ERROR_ADMIN_CHAT_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ERROR_ADMIN_CHAT_ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init error bot: %w", err)
	}

	return &Infra{bot: bot, chatID: chatID}, nil
}

func (i *Infra) Notify(ctx context.Context, requestID string, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Ошибка конвертации (request %s)\n\nОшибка: %v\n\nДетали: %s",
		requestID,
		err,
		details,
	)

	msg := tgbotapi.NewMessage(i.chatID, text)

	_, sendErr := i.bot.Send(msg)
	if sendErr != nil {
		log.Printf("[error_notificator] send fail: %v", sendErr)
		return sendErr
	}

	return nil
}
