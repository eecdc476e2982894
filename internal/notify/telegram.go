package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jdwit/ssh-auth-analyzer/internal/config"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// TelegramAPI defines the bot operations used.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts notifications to a chat through a bot.
type Telegram struct {
	bot    TelegramAPI
	chatID int64
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(opts config.Notify) (*Telegram, error) {
	token, err := requiredSetting("TELEGRAM_BOT_TOKEN", opts.TelegramToken)
	if err != nil {
		return nil, err
	}

	chat, err := requiredSetting("TELEGRAM_CHAT_ID", opts.TelegramChatID)
	if err != nil {
		return nil, err
	}
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	slog.Info("telegram bot authorized", "account", bot.Self.UserName)

	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Notify posts one message for r.
func (t *Telegram) Notify(_ context.Context, r types.DetectionResult) error {
	msg := tgbotapi.NewMessage(t.chatID, subject(r)+"\n\n"+body(r))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
