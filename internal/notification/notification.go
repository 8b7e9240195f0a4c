package notification

import (
	"context"
	"log/slog"
	"time"
)

const (
	// KindMoneyAdded is sent when an account funds its own wallet.
	KindMoneyAdded = "money_added"
	// KindMoneySent is sent to the receiver of a SEND_MONEY transfer.
	KindMoneySent = "money_sent"
	// KindCashOut is sent to the receiver of a CASH_OUT transfer.
	KindCashOut = "cash_out"
	// KindWalletStatus is sent to an account whose wallet status changed.
	KindWalletStatus = "wallet_status_changed"
)

// Message describes a notification payload.
type Message struct {
	Kind          string    `json:"kind"`
	Destination   string    `json:"destination"`
	Body          string    `json:"body"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger. It is used when no
// broker is configured.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("destination", message.Destination),
		slog.String("transaction_id", message.TransactionID),
		slog.String("body", message.Body),
	)
	return nil
}
