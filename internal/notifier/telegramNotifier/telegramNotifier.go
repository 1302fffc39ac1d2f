package telegramNotifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/bearhouse_ledger/config"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	tele "gopkg.in/telebot.v4"
)

type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramNotifier posts plain text messages to one chat.
type TelegramNotifier struct {
	sender Sender
	chat   tele.ChatID
}

func New(cfg *config.Config) (*TelegramNotifier, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("tele.NewBot: %w", err)
	}
	return NewWithSender(b, cfg.Telegram.ChatID), nil
}

func NewWithSender(sender Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chat: tele.ChatID(chatID)}
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TelegramNotifier.Notify"

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := n.sender.Send(n.chat, text); err != nil {
		slog.Error("failed to send telegram message", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("telegram message sent", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

// Noop drops every message, used when no bot token is configured.
type Noop struct{}

func (Noop) Notify(ctx context.Context, text string) error {
	slog.Debug("notification dropped", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("text", text))
	return nil
}
