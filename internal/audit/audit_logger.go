package audit

import (
	"time"

	"github.com/rs/zerolog"
)

type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	OrderID   string            `json:"order_id,omitempty"`
	AccountID string            `json:"account_id,omitempty"`
	Amount    int64             `json:"amount,omitempty"`
	Status    string            `json:"status"`
	Details   map[string]string `json:"details,omitempty"`
}

// AuditLogger writes money-moving and reconciliation events as structured
// AUDIT records next to the regular application log.
type AuditLogger struct {
	log zerolog.Logger
}

func NewAuditLogger(log zerolog.Logger) *AuditLogger {
	return &AuditLogger{log: log.With().Str("component", "audit").Logger()}
}

// LogCredit records a recipient balance credit backed by a support record.
func (a *AuditLogger) LogCredit(orderID, fanID, creatorID string, amount int64, source string) {
	a.write(AuditEvent{
		Timestamp: time.Now(),
		EventType: "CREDIT",
		OrderID:   orderID,
		AccountID: creatorID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details: map[string]string{
			"fan_id": fanID,
			"source": source,
		},
	})
}

// LogAnomaly records a callback that was acknowledged without being applied.
func (a *AuditLogger) LogAnomaly(orderID, reason string, details map[string]string) {
	if details == nil {
		details = map[string]string{}
	}
	details["reason"] = reason
	a.write(AuditEvent{
		Timestamp: time.Now(),
		EventType: "ANOMALY",
		OrderID:   orderID,
		Status:    "IGNORED",
		Details:   details,
	})
}

func (a *AuditLogger) LogError(orderID, accountID string, err error) {
	a.write(AuditEvent{
		Timestamp: time.Now(),
		EventType: "ERROR",
		OrderID:   orderID,
		AccountID: accountID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *AuditLogger) write(event AuditEvent) {
	e := a.log.Info()
	if event.Status == "FAILED" {
		e = a.log.Error()
	}
	e.Str("event_type", event.EventType).
		Time("event_time", event.Timestamp).
		Str("order_id", event.OrderID).
		Str("account_id", event.AccountID).
		Int64("amount", event.Amount).
		Str("status", event.Status).
		Interface("details", event.Details).
		Msg("AUDIT")
}
