package models

import "time"

// Support record statuses
const (
	SupportStatusPending = "pending"
	SupportStatusPaid    = "paid"
	SupportStatusFailed  = "failed"
)

// Support record sources
const (
	SupportSourceGateway = "gateway"
	SupportSourceDirect  = "direct"
)

// Support is one donation from a fan to a creator. Immutable once written.
type Support struct {
	ID        string    `json:"id" db:"id"`
	OrderID   *string   `json:"orderId,omitempty" db:"order_id"`
	FanID     string    `json:"fanId" db:"fan_id"`
	CreatorID string    `json:"creatorId" db:"creator_id"`
	Amount    int64     `json:"amount" db:"amount"`
	Message   string    `json:"message" db:"message"`
	Status    string    `json:"status" db:"status"`
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
