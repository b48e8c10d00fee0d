// Package notify forwards watcher events to external channels.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/okazdal/mailtm/internal/parser"
	"github.com/okazdal/mailtm/pkg/models"
)

const maxBodyLength = 3500 // leave room for markup under Telegram's 4096 limit

// Telegram forwards new messages to a Telegram chat.
type Telegram struct {
	bot    *bot.Bot
	chatID int64
	logger *slog.Logger
}

// NewTelegram creates the notifier.
func NewTelegram(token string, chatID int64, logger *slog.Logger) (*Telegram, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Telegram{
		bot:    b,
		chatID: chatID,
		logger: logger.With("component", "telegram_notify"),
	}, nil
}

// NewMessage sends a summary of msg to the configured chat. preview is the
// plain-text body, already extracted from HTML when needed.
func (t *Telegram) NewMessage(ctx context.Context, msg models.Message, preview string, codes []parser.DetectedCode) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      format(msg, preview, codes),
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	t.logger.Debug("forwarded message", "message_id", msg.ID)
	return nil
}

func format(msg models.Message, preview string, codes []parser.DetectedCode) string {
	var sb strings.Builder

	from := escapeHTML(msg.FromAddress())
	if msg.FromName() != "" {
		from = fmt.Sprintf("%s &lt;%s&gt;", escapeHTML(msg.FromName()), escapeHTML(msg.FromAddress()))
	}

	sb.WriteString(fmt.Sprintf("<b>From:</b> %s\n", from))
	sb.WriteString(fmt.Sprintf("<b>Subject:</b> %s\n", escapeHTML(msg.Subject)))
	sb.WriteString(fmt.Sprintf("<b>Date:</b> %s\n\n", msg.CreatedAt.Format("02.01.2006 15:04")))

	if len(codes) > 0 {
		sb.WriteString("<b>Codes:</b> ")
		for _, code := range codes {
			sb.WriteString(fmt.Sprintf("<code>%s</code> ", escapeHTML(code.Value)))
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString(escapeHTML(truncate(preview, maxBodyLength)))
	return sb.String()
}

// escapeHTML escapes the characters Telegram's HTML parse mode treats as markup.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}
