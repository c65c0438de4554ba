package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/supportly/backend/internal/audit"
	"github.com/supportly/backend/internal/config"
	"github.com/supportly/backend/internal/gateway"
	"github.com/supportly/backend/internal/models"
)

const orderIDPrefix = "SUP-"

var maxAmount = decimal.NewFromInt(1_000_000_000_000)

// AccountLookup is the part of the account store payments depend on.
type AccountLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// SupportLedger is the part of the ledger store payments depend on.
type SupportLedger interface {
	RecordSupport(ctx context.Context, rec SupportRecord) (*models.Support, bool, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Support, error)
}

// SessionRequest represents the payment session request payload
// @Description Payment session request structure
type SessionRequest struct {
	RecipientID string          `json:"recipientId" validate:"required,account_id" example:"6f1c2a8e-2b1d-4a57-9d1f-0c1b2a3d4e5f"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"50000"`
	Message     string          `json:"message,omitempty" validate:"max=255" example:"Keep it up!"`
}

// SessionResponse represents a created payment session
// @Description Payment session response structure
type SessionResponse struct {
	Success      bool   `json:"success" example:"true"`
	SessionToken string `json:"sessionToken" example:"66e4fa55-fdac-4ef9-91b5-733b97d1b862"`
	RedirectURL  string `json:"redirectUrl,omitempty"`
	OrderID      string `json:"orderId" example:"SUP-vytxeTZskVKR7C7WgdSP3d"`
}

// Outcome is what a notification resolved to.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomePending   Outcome = "pending"
	OutcomeRejected  Outcome = "rejected"
	OutcomeUnknown   Outcome = "unknown"
	// OutcomeIgnored is a confirmed payment that could not be credited and
	// was acknowledged after an anomaly was audited.
	OutcomeIgnored Outcome = "ignored"
)

// Classify maps provider statuses onto an outcome. Only capture or
// settlement with an accepted fraud check confirms a payment.
func Classify(transactionStatus, fraudStatus string) Outcome {
	switch transactionStatus {
	case gateway.StatusCapture, gateway.StatusSettlement:
		if fraudStatus == gateway.FraudAccept {
			return OutcomeConfirmed
		}
		return OutcomeRejected
	case gateway.StatusPending:
		return OutcomePending
	case gateway.StatusDeny, gateway.StatusExpire, gateway.StatusCancel:
		return OutcomeRejected
	default:
		return OutcomeUnknown
	}
}

type PaymentService struct {
	accounts AccountLookup
	ledger   SupportLedger
	gateway  gateway.Gateway
	verifier *gateway.SignatureVerifier
	redis    *redis.Client
	audit    *audit.AuditLogger
	expiry   int
	limits   config.PaymentConfig
	log      zerolog.Logger
}

func NewPaymentService(
	accounts AccountLookup,
	ledger SupportLedger,
	gw gateway.Gateway,
	verifier *gateway.SignatureVerifier,
	redisClient *redis.Client,
	auditLogger *audit.AuditLogger,
	midtransCfg config.MidtransConfig,
	paymentCfg config.PaymentConfig,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		accounts: accounts,
		ledger:   ledger,
		gateway:  gw,
		verifier: verifier,
		redis:    redisClient,
		audit:    auditLogger,
		expiry:   midtransCfg.ExpiryMinutes,
		limits:   paymentCfg,
		log:      log.With().Str("component", "payments").Logger(),
	}
}

// CreateSession opens a hosted checkout for payerID. Input is validated
// before any lookup or gateway call; nothing is persisted locally.
func (s *PaymentService) CreateSession(ctx context.Context, payerID string, req SessionRequest) (*SessionResponse, error) {
	if !IsValidAccountID(req.RecipientID) {
		return nil, fmt.Errorf("%w: malformed recipient id", ErrInvalidInput)
	}
	amount, err := wholeAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if payerID == req.RecipientID {
		return nil, fmt.Errorf("%w: cannot support yourself", ErrInvalidInput)
	}

	recipient, err := resolveCreator(ctx, s.accounts, req.RecipientID)
	if err != nil {
		return nil, err
	}
	payer, err := resolveActive(ctx, s.accounts, payerID)
	if err != nil {
		return nil, err
	}

	release, err := s.reserveSession(ctx, payerID)
	if err != nil {
		return nil, err
	}

	orderID := orderIDPrefix + shortuuid.New()
	payerName := payer.FullName
	if payerName == "" {
		payerName = payer.Username
	}

	session, err := s.gateway.CreateSession(ctx, gateway.SessionParams{
		OrderID:        orderID,
		GrossAmount:    amount,
		PayerName:      payerName,
		PayerEmail:     payer.Email,
		RecipientID:    recipient.ID,
		RecipientLabel: recipient.Username,
		ExpiryMinutes:  s.expiry,
		Metadata: gateway.Correlation{
			RecipientID: recipient.ID,
			PayerID:     payer.ID,
			Message:     strings.TrimSpace(req.Message),
		},
	})
	if err != nil {
		release()
		s.log.Error().Err(err).Str("order_id", orderID).Msg("Gateway session creation failed")
		return nil, fmt.Errorf("%w: could not create payment session", ErrGateway)
	}

	s.log.Info().
		Str("order_id", orderID).
		Str("payer_id", payer.ID).
		Str("recipient_id", recipient.ID).
		Int64("amount", amount).
		Msg("Payment session created")

	return &SessionResponse{
		Success:      true,
		SessionToken: session.Token,
		RedirectURL:  session.RedirectURL,
		OrderID:      orderID,
	}, nil
}

// HandleNotification reconciles one provider callback. A nil error means the
// callback must be acknowledged; only an unverifiable signature (ErrForbidden)
// or a storage failure are returned as errors.
func (s *PaymentService) HandleNotification(ctx context.Context, n gateway.Notification) (Outcome, error) {
	logger := s.log.With().
		Str("order_id", n.OrderID).
		Str("transaction_status", n.TransactionStatus).
		Str("fraud_status", n.FraudStatus).
		Logger()

	if !s.verifier.Verify(n) {
		s.audit.LogAnomaly(n.OrderID, "invalid signature", nil)
		logger.Warn().Msg("Rejected notification with invalid signature")
		return "", fmt.Errorf("%w: invalid notification signature", ErrForbidden)
	}

	outcome := Classify(n.TransactionStatus, n.FraudStatus)
	switch outcome {
	case OutcomePending:
		logger.Info().Msg("Payment pending")
		return outcome, nil
	case OutcomeRejected:
		logger.Info().Msg("Payment rejected")
		return outcome, nil
	case OutcomeUnknown:
		logger.Warn().Msg("Unrecognised transaction status, acknowledging")
		return outcome, nil
	}

	amount, err := grossAmount(n.GrossAmount.String())
	if err != nil {
		s.anomaly(n, "unusable gross amount")
		return OutcomeIgnored, nil
	}

	corr := n.Correlation()
	if !IsValidAccountID(corr.RecipientID) || !IsValidAccountID(corr.PayerID) {
		s.anomaly(n, "malformed correlation ids")
		return OutcomeIgnored, nil
	}

	// The money has already moved, so a recipient deactivated since the
	// session was opened is still credited.
	recipient, err := s.accounts.FindByID(ctx, corr.RecipientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.anomaly(n, "recipient missing")
			return OutcomeIgnored, nil
		}
		return "", err
	}
	if !recipient.IsCreator() {
		s.anomaly(n, "recipient is not a creator")
		return OutcomeIgnored, nil
	}
	if _, err := s.accounts.FindByID(ctx, corr.PayerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.anomaly(n, "payer missing")
			return OutcomeIgnored, nil
		}
		return "", err
	}

	_, created, err := s.ledger.RecordSupport(ctx, SupportRecord{
		OrderID:   n.OrderID,
		FanID:     corr.PayerID,
		CreatorID: corr.RecipientID,
		Amount:    amount,
		Message:   corr.Message,
		Source:    models.SupportSourceGateway,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
			s.anomaly(n, err.Error())
			return OutcomeIgnored, nil
		}
		s.audit.LogError(n.OrderID, corr.RecipientID, err)
		return "", err
	}
	if !created {
		logger.Info().Msg("Duplicate confirmed notification, already credited")
		return outcome, nil
	}

	s.audit.LogCredit(n.OrderID, corr.PayerID, corr.RecipientID, amount, models.SupportSourceGateway)
	logger.Info().Str("recipient_id", corr.RecipientID).Int64("amount", amount).Msg("Recipient credited")
	return outcome, nil
}

// GetOrder returns the ledger record for a confirmed order. Only its payer
// and recipient may see it.
func (s *PaymentService) GetOrder(ctx context.Context, requesterID, orderID string) (*models.Support, error) {
	if !strings.HasPrefix(orderID, orderIDPrefix) {
		return nil, fmt.Errorf("%w: unknown order id format", ErrInvalidInput)
	}
	support, err := s.ledger.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if support.FanID != requesterID && support.CreatorID != requesterID {
		return nil, fmt.Errorf("%w: order belongs to another account", ErrForbidden)
	}
	return support, nil
}

func (s *PaymentService) anomaly(n gateway.Notification, reason string) {
	s.audit.LogAnomaly(n.OrderID, reason, map[string]string{
		"recipient_id":       n.RecipientID,
		"payer_id":           n.PayerID,
		"gross_amount":       n.GrossAmount.String(),
		"transaction_status": n.TransactionStatus,
	})
}

func rateLimitKey(payerID string) string {
	return "payment:sessions:" + payerID
}

// reserveSession counts a session against the payer's window before the
// gateway is called, so concurrent requests cannot overshoot the limit. The
// returned release gives the slot back when the session is not created.
// Redis failures do not block payments.
func (s *PaymentService) reserveSession(ctx context.Context, payerID string) (func(), error) {
	noop := func() {}
	if s.redis == nil || s.limits.SessionLimit <= 0 {
		return noop, nil
	}
	key := rateLimitKey(payerID)

	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		s.log.Error().Err(err).Msg("Rate limit increment failed")
		return noop, nil
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, s.limits.SessionWindow).Err(); err != nil {
			s.log.Error().Err(err).Msg("Rate limit window could not be set")
		}
	}
	if count > int64(s.limits.SessionLimit) {
		return noop, fmt.Errorf("%w: too many payment sessions, try again later", ErrRateLimited)
	}

	return func() {
		if err := s.redis.Decr(context.WithoutCancel(ctx), key).Err(); err != nil {
			s.log.Error().Err(err).Msg("Rate limit release failed")
		}
	}, nil
}

// wholeAmount accepts positive whole rupiah amounts only.
func wholeAmount(d decimal.Decimal) (int64, error) {
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: amount must be a whole number", ErrInvalidInput)
	}
	if d.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: amount out of range", ErrInvalidInput)
	}
	return d.IntPart(), nil
}

// grossAmount parses the provider's decimal string ("50000.00").
func grossAmount(raw string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: gross amount %q", ErrInvalidInput, raw)
	}
	return wholeAmount(d)
}

// resolveCreator finds an active creator; anything else is ErrNotFound.
func resolveCreator(ctx context.Context, accounts AccountLookup, id string) (*models.User, error) {
	u, err := resolveActive(ctx, accounts, id)
	if err != nil {
		return nil, err
	}
	if !u.IsCreator() {
		return nil, fmt.Errorf("recipient %s: %w", id, ErrNotFound)
	}
	return u, nil
}

func resolveActive(ctx context.Context, accounts AccountLookup, id string) (*models.User, error) {
	u, err := accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	return u, nil
}
