package hosting

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/contre95/dispatch/src/features/config"
	"github.com/contre95/dispatch/src/features/dispatching"
)

func TestFormatSummaryMessage(t *testing.T) {
	msg := FormatSummaryMessage(dispatching.Summary{Transferred: 12, Skipped: 3})
	for _, want := range []string{"✅", "Transferred: 12", "Skipped: 3", "Failed: 0"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
	if strings.Contains(msg, "Problems") {
		t.Error("a clean run must not list problems")
	}
}

func TestFormatSummaryMessageTruncatesProblems(t *testing.T) {
	s := dispatching.Summary{Failed: 15}
	for i := 0; i < 15; i++ {
		s.Problems = append(s.Problems, dispatching.Result{
			Outcome: dispatching.Failed,
			Source:  fmt.Sprintf("/in/%02d.mp3", i),
			Reason:  dispatching.FailTransfer,
			Err:     errors.New("disk full"),
		})
	}

	msg := FormatSummaryMessage(s)
	if !strings.HasPrefix(msg, "⚠️") {
		t.Errorf("expected a warning marker, got %q", msg)
	}
	if !strings.Contains(msg, "/in/09.mp3") || strings.Contains(msg, "/in/10.mp3") {
		t.Errorf("expected exactly %d problems listed:\n%s", maxProblemsInMessage, msg)
	}
	if !strings.Contains(msg, "and 5 more") {
		t.Errorf("expected the remaining count:\n%s", msg)
	}
}

func TestNewTelegramNotifierRequiresConfig(t *testing.T) {
	if _, err := NewTelegramNotifier(config.Telegram{Enabled: false, Token: "x"}, nil); err == nil {
		t.Error("expected an error when notifications are disabled")
	}
	if _, err := NewTelegramNotifier(config.Telegram{Enabled: true}, nil); err == nil {
		t.Error("expected an error without a token")
	}
}
