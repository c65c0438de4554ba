package gateway

import (
	"bytes"
	"encoding/json"
)

// Transaction statuses reported by the provider.
const (
	StatusCapture    = "capture"
	StatusSettlement = "settlement"
	StatusPending    = "pending"
	StatusDeny       = "deny"
	StatusExpire     = "expire"
	StatusCancel     = "cancel"
)

// Fraud statuses
const (
	FraudAccept    = "accept"
	FraudChallenge = "challenge"
	FraudDeny      = "deny"
)

// Notification is the HTTP notification body posted by the provider.
type Notification struct {
	TransactionStatus string     `json:"transaction_status"`
	FraudStatus       string     `json:"fraud_status"`
	OrderID           string     `json:"order_id"`
	GrossAmount       FlexString `json:"gross_amount"`
	StatusCode        FlexString `json:"status_code"`
	SignatureKey      string     `json:"signature_key"`
	TransactionID     string     `json:"transaction_id"`
	PaymentType       string     `json:"payment_type"`
	RecipientID       string     `json:"custom_field1"`
	PayerID           string     `json:"custom_field2"`
	Message           string     `json:"custom_field3"`
}

func (n Notification) Correlation() Correlation {
	return Correlation{RecipientID: n.RecipientID, PayerID: n.PayerID, Message: n.Message}
}

// FlexString accepts either a JSON string or a bare JSON number and keeps the
// exact text, which the signature is computed over.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
