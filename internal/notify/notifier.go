package notify

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"paygate/internal/models"
	"paygate/internal/payment"
	"paygate/internal/pkg/telegram"
)

// Notifier reports payment events to the operations channel. Messages
// carry order and amount context only; signatures and secret material
// never appear here.
type Notifier interface {
	PaymentVerified(tx *models.Transaction, outcome *payment.Outcome)
	DailySummary(counts map[string]int64)
}

// NewTelegramNotifier builds a Telegram-backed notifier, or a no-op one
// when the token or chat is unconfigured.
func NewTelegramNotifier(token, chatID string, logger *zap.Logger) Notifier {
	if token == "" || chatID == "" {
		return nopNotifier{}
	}
	return &telegramNotifier{
		bot:    telegram.NewBotAPI(token),
		chatID: chatID,
		logger: logger,
	}
}

type telegramNotifier struct {
	bot    *telegram.BotAPI
	chatID string
	logger *zap.Logger
}

func (n *telegramNotifier) PaymentVerified(tx *models.Transaction, outcome *payment.Outcome) {
	text := fmt.Sprintf(
		"💵 Payment verified\n\nOrder: %s\nSite: %s\nMethod: %s\nAmount: %s\nStatus: %s\nRef: %s",
		tx.OrderID, tx.Site, tx.Method, tx.TotalAmount, outcome.Status, outcome.RefID,
	)
	if _, err := n.bot.SendMessage(n.chatID, text); err != nil {
		n.logger.Warn("payment report failed", zap.Error(err))
	}
}

func (n *telegramNotifier) DailySummary(counts map[string]int64) {
	var b strings.Builder
	b.WriteString("📊 Daily payment summary\n")
	for status, total := range counts {
		fmt.Fprintf(&b, "\n%s: %d", status, total)
	}
	if _, err := n.bot.SendMessage(n.chatID, b.String()); err != nil {
		n.logger.Warn("daily summary report failed", zap.Error(err))
	}
}

type nopNotifier struct{}

func (nopNotifier) PaymentVerified(*models.Transaction, *payment.Outcome) {}
func (nopNotifier) DailySummary(map[string]int64)                         {}
