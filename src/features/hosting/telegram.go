package hosting

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/contre95/dispatch/src/features/config"
	"github.com/contre95/dispatch/src/features/dispatching"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxProblemsInMessage keeps the summary under Telegram's message limit.
const maxProblemsInMessage = 10

// TelegramNotifier posts run summaries to a set of chats.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	logger  *slog.Logger
}

// NewTelegramNotifier creates a notifier from the telegram configuration.
func NewTelegramNotifier(cfg config.Telegram, logger *slog.Logger) (*TelegramNotifier, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("telegram notifications are disabled in configuration")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info("Telegram bot initialized", "username", bot.Self.UserName)

	return &TelegramNotifier{bot: bot, chatIDs: cfg.ChatIDs, logger: logger}, nil
}

// NotifySummary sends the summary to every configured chat. It returns the
// last send error, after trying all chats.
func (n *TelegramNotifier) NotifySummary(summary dispatching.Summary) error {
	text := FormatSummaryMessage(summary)
	var lastErr error
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Error("TelegramNotifier.NotifySummary: failed to send message", "chat_id", chatID, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

// FormatSummaryMessage renders a summary as a Telegram markdown message.
func FormatSummaryMessage(s dispatching.Summary) string {
	var b strings.Builder
	status := "✅"
	if s.Failed > 0 {
		status = "⚠️"
	}
	if s.Interrupted {
		status = "⏹️"
	}
	fmt.Fprintf(&b, "%s *Dispatch run finished*\n", status)
	fmt.Fprintf(&b, "Transferred: %d\n", s.Transferred)
	if s.Planned > 0 {
		fmt.Fprintf(&b, "Planned (dry run): %d\n", s.Planned)
	}
	fmt.Fprintf(&b, "Skipped: %d\n", s.Skipped)
	fmt.Fprintf(&b, "Failed: %d\n", s.Failed)
	if s.Warnings > 0 {
		fmt.Fprintf(&b, "Warnings: %d\n", s.Warnings)
	}

	shown := 0
	for _, r := range s.Problems {
		if shown == maxProblemsInMessage {
			fmt.Fprintf(&b, "…and %d more\n", len(s.Problems)-shown)
			break
		}
		if shown == 0 {
			b.WriteString("\n*Problems*\n")
		}
		fmt.Fprintf(&b, "• `%s` (%s)\n", r.Source, r.Reason)
		shown++
	}
	return b.String()
}
