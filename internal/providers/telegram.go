package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinical-dashboard/internal/alerts"
	"clinical-dashboard/internal/logging"
	"clinical-dashboard/internal/models"
	"clinical-dashboard/internal/utils"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"
)

const (
	telegramAttempts   = 3
	telegramRetryDelay = time.Second
)

// Sender is the part of the Telegram bot API the escalator needs.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) error
}

type botSender struct {
	b *bot.Bot
}

func (s botSender) SendMessage(ctx context.Context, params *bot.SendMessageParams) error {
	_, err := s.b.SendMessage(ctx, params)
	return err
}

// TelegramEscalator posts critical alerts to a care-team chat.
type TelegramEscalator struct {
	sender  Sender
	chatID  int64
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewTelegram builds an escalator on the go-telegram bot client.
func NewTelegram(token string, chatID int64, ratePerSecond float64, logger *logging.Logger) (*TelegramEscalator, error) {
	if token == "" {
		return nil, fmt.Errorf("missing Telegram bot token")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("missing Telegram chat_id")
	}
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	return NewTelegramWithSender(botSender{b: b}, chatID, ratePerSecond, logger), nil
}

func NewTelegramWithSender(sender Sender, chatID int64, ratePerSecond float64, logger *logging.Logger) *TelegramEscalator {
	burst := int(ratePerSecond)
	if burst < 1 {
		burst = 1
	}
	return &TelegramEscalator{
		sender:  sender,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		logger:  logger,
	}
}

// Escalate sends the alert, waiting for the rate limiter and retrying
// transient failures.
func (t *TelegramEscalator) Escalate(ctx context.Context, a models.Alert) error {
	// Check rate limit
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}

	params := &bot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      ComposeMessage(a),
		ParseMode: "Markdown",
	}
	return utils.Retry(ctx, t.logger, telegramAttempts, telegramRetryDelay, func() error {
		if err := t.sender.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", t.chatID, err)
		}
		return nil
	})
}

// ComposeMessage renders an alert for the care-team chat.
func ComposeMessage(a models.Alert) string {
	title := a.Title
	if title == "" {
		title = alerts.HumanizeType(a.AlertType)
	}
	desc := alerts.Describe(a.AlertType, a.Severity, "", "")

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s: %s*\n", strings.ToUpper(a.Severity), title)
	fmt.Fprintf(&sb, "*Patient ID:* %d\n", a.UserID)
	fmt.Fprintf(&sb, "*Alert ID:* %d\n", a.AlertID)
	if !a.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "*Raised:* %s\n", a.CreatedAt.UTC().Format(time.RFC3339))
	}
	if a.Message != "" {
		fmt.Fprintf(&sb, "\n%s\n", a.Message)
	}
	if len(desc.ActionSteps) > 0 {
		sb.WriteString("\n*Next steps:*\n")
		for _, step := range desc.ActionSteps {
			fmt.Fprintf(&sb, "- %s\n", step)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
