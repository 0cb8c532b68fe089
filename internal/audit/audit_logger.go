package audit

import (
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Event types
const (
	EventDeposit        = "DEPOSIT"
	EventResetDeposit   = "RESET_DEPOSIT"
	EventPurchase       = "PURCHASE"
	EventRefund         = "REFUND"
	EventProductCreate  = "PRODUCT_CREATE"
	EventProductUpdate  = "PRODUCT_UPDATE"
	EventProductDelete  = "PRODUCT_DELETE"
	EventOperationError = "ERROR"
)

type Event struct {
	Timestamp time.Time
	EventType string
	AccountID string
	ProductID string
	Amount    int64
	Status    string
	Details   map[string]string
}

// Logger writes the money and inventory audit trail. A nil *Logger is a no-op.
type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("audit")}
}

func (a *Logger) LogDeposit(accountID string, amount, balance int64) {
	a.log(Event{
		EventType: EventDeposit,
		AccountID: accountID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details:   map[string]string{"balance": strconv.FormatInt(balance, 10)},
	})
}

func (a *Logger) LogReset(accountID string, previous int64) {
	a.log(Event{
		EventType: EventResetDeposit,
		AccountID: accountID,
		Amount:    previous,
		Status:    "SUCCESS",
	})
}

func (a *Logger) LogPurchase(accountID, productID string, price, paid int64) {
	a.log(Event{
		EventType: EventPurchase,
		AccountID: accountID,
		ProductID: productID,
		Amount:    price,
		Status:    "SUCCESS",
		Details:   map[string]string{"paid": strconv.FormatInt(paid, 10)},
	})
}

func (a *Logger) LogRefund(accountID, productID string, amount int64, reason error) {
	a.log(Event{
		EventType: EventRefund,
		AccountID: accountID,
		ProductID: productID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details:   map[string]string{"reason": reason.Error()},
	})
}

func (a *Logger) LogProduct(eventType, ownerID, productID string) {
	a.log(Event{
		EventType: eventType,
		AccountID: ownerID,
		ProductID: productID,
		Status:    "SUCCESS",
	})
}

func (a *Logger) LogError(accountID, productID string, err error) {
	a.log(Event{
		EventType: EventOperationError,
		AccountID: accountID,
		ProductID: productID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	if a == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	fields := []zap.Field{
		zap.Time("timestamp", event.Timestamp),
		zap.String("event_type", event.EventType),
		zap.String("status", event.Status),
	}
	if event.AccountID != "" {
		fields = append(fields, zap.String("account_id", event.AccountID))
	}
	if event.ProductID != "" {
		fields = append(fields, zap.String("product_id", event.ProductID))
	}
	if event.Amount != 0 {
		fields = append(fields, zap.Int64("amount", event.Amount))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	a.logger.Info("AUDIT", fields...)
}
