package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/config"
)

// SnapGateway opens Midtrans Snap checkout sessions.
type SnapGateway struct {
	client  snap.Client
	timeout time.Duration
	log     zerolog.Logger
}

func NewSnapGateway(cfg config.MidtransConfig, log zerolog.Logger) *SnapGateway {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}

	var client snap.Client
	client.New(cfg.ServerKey, env)

	return &SnapGateway{
		client:  client,
		timeout: cfg.Timeout,
		log:     log.With().Str("component", "midtrans").Logger(),
	}
}

func buildSnapRequest(p SessionParams) *snap.Request {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  p.OrderID,
			GrossAmt: p.GrossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: p.PayerName,
			Email: p.PayerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    p.RecipientID,
				Price: p.GrossAmount,
				Qty:   1,
				Name:  truncate(fmt.Sprintf("Donation to %s", p.RecipientLabel), 50),
			},
		},
		CustomField1: p.Metadata.RecipientID,
		CustomField2: p.Metadata.PayerID,
		CustomField3: p.Metadata.Message,
	}
	if p.ExpiryMinutes > 0 {
		req.Expiry = &snap.ExpiryDetails{
			Duration: int64(p.ExpiryMinutes),
			Unit:     "minute",
		}
	}
	return req
}

type snapResult struct {
	resp *snap.Response
	err  *midtrans.Error
}

// CreateSession calls Snap CreateTransaction. The SDK call itself is not
// context aware, so the deadline is enforced around it.
func (g *SnapGateway) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	req := buildSnapRequest(p)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan snapResult, 1)
	go func() {
		resp, err := g.client.CreateTransaction(req)
		done <- snapResult{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		g.log.Warn().Str("order_id", p.OrderID).Dur("timeout", g.timeout).Msg("Snap request timed out")
		return nil, fmt.Errorf("snap create transaction: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			g.log.Error().
				Str("order_id", p.OrderID).
				Int("status_code", r.err.StatusCode).
				Str("error", r.err.Message).
				Msg("Snap request failed")
			return nil, fmt.Errorf("snap create transaction: %s", r.err.Message)
		}
		if r.resp == nil || r.resp.Token == "" {
			return nil, ErrEmptyToken
		}
		g.log.Debug().Str("order_id", p.OrderID).Msg("Snap session created")
		return &Session{Token: r.resp.Token, RedirectURL: r.resp.RedirectURL}, nil
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
