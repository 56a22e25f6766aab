package services

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ecanteen/internal/logger"
	"ecanteen/internal/models"
)

// OrderNotifier tells the kitchen about a new order.
type OrderNotifier interface {
	NotifyNewOrder(ctx context.Context, o *models.Order) error
}

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zap.Logger
}

// NewOrderNotifier returns a Telegram notifier, or a no-op one when the bot
// token or chat is not configured.
func NewOrderNotifier(token string, chatID int64) (OrderNotifier, error) {
	if token == "" || chatID == 0 {
		logger.WithModule("telegram").Info("telegram not configured, order notifications disabled")
		return noopNotifier{}, nil
	}
	return NewTelegramNotifier(token, tgbotapi.APIEndpoint, chatID, http.DefaultClient)
}

// NewTelegramNotifier talks to endpoint, a "%s/%s" pattern like tgbotapi.APIEndpoint.
func NewTelegramNotifier(token, endpoint string, chatID int64, client tgbotapi.HTTPClient) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	l := logger.WithModule("telegram")
	l.Info("telegram bot ready", zap.String("bot", bot.Self.UserName), zap.Int64("chat_id", chatID))
	return &TelegramNotifier{bot: bot, chatID: chatID, log: l}, nil
}

func (t *TelegramNotifier) NotifyNewOrder(ctx context.Context, o *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, orderMessage(o))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		t.log.Warn("telegram send failed", zap.String("order_number", o.OrderNumber), zap.Error(err))
		return fmt.Errorf("telegram send %s: %w", o.OrderNumber, err)
	}
	return nil
}

func orderMessage(o *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>New order %s</b>\n", html.EscapeString(o.OrderNumber))
	fmt.Fprintf(&b, "%s, %s\n", html.EscapeString(o.CustomerName), html.EscapeString(o.CustomerPhone))
	if o.DeliveryAddress != "" {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(o.DeliveryAddress))
	}
	b.WriteString("\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%d x %s  %.2f\n", it.Quantity, html.EscapeString(it.Name), it.Price*float64(it.Quantity))
	}
	fmt.Fprintf(&b, "\n<b>Total: %.2f</b>", o.Total)
	if o.SpecialInstructions != "" {
		fmt.Fprintf(&b, "\n<i>%s</i>", html.EscapeString(o.SpecialInstructions))
	}
	return b.String()
}

type noopNotifier struct{}

func (noopNotifier) NotifyNewOrder(context.Context, *models.Order) error { return nil }
