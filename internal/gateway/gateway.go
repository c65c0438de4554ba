// Package gateway talks to the hosted payment provider: it opens checkout
// sessions and describes the asynchronous notifications the provider sends back.
package gateway

import (
	"context"
	"errors"
)

var ErrEmptyToken = errors.New("gateway returned an empty session token")

// Correlation is echoed back unchanged by the provider in every notification
// for the order (custom_field1..3).
type Correlation struct {
	RecipientID string
	PayerID     string
	Message     string
}

type SessionParams struct {
	OrderID        string
	GrossAmount    int64
	PayerName      string
	PayerEmail     string
	RecipientID    string
	RecipientLabel string
	ExpiryMinutes  int
	Metadata       Correlation
}

type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
}

// Gateway opens hosted checkout sessions. Implementations must honour ctx
// deadlines.
type Gateway interface {
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)
}
