package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/supportly/backend/internal/audit"
	"github.com/supportly/backend/internal/models"
)

// DonationRequest represents a direct support request
// @Description Direct donation request structure
type DonationRequest struct {
	CreatorID string          `json:"creatorId" validate:"required,account_id" example:"6f1c2a8e-2b1d-4a57-9d1f-0c1b2a3d4e5f"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"number" example:"25000"`
	Message   string          `json:"message,omitempty" validate:"max=255" example:"Thanks for the stream"`
}

// DonationService records supports that were settled outside the gateway.
type DonationService struct {
	accounts AccountLookup
	ledger   SupportLedger
	audit    *audit.AuditLogger
	log      zerolog.Logger
}

func NewDonationService(accounts AccountLookup, ledger SupportLedger, auditLogger *audit.AuditLogger, log zerolog.Logger) *DonationService {
	return &DonationService{
		accounts: accounts,
		ledger:   ledger,
		audit:    auditLogger,
		log:      log.With().Str("component", "donations").Logger(),
	}
}

// Donate writes the support record and credits the creator atomically.
func (s *DonationService) Donate(ctx context.Context, fanID string, req DonationRequest) (*models.Support, error) {
	if !IsValidAccountID(req.CreatorID) {
		return nil, fmt.Errorf("%w: malformed creator id", ErrInvalidInput)
	}
	amount, err := wholeAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if fanID == req.CreatorID {
		return nil, fmt.Errorf("%w: cannot support yourself", ErrInvalidInput)
	}

	if _, err := resolveCreator(ctx, s.accounts, req.CreatorID); err != nil {
		return nil, err
	}

	support, _, err := s.ledger.RecordSupport(ctx, SupportRecord{
		FanID:     fanID,
		CreatorID: req.CreatorID,
		Amount:    amount,
		Message:   req.Message,
		Source:    models.SupportSourceDirect,
	})
	if err != nil {
		s.audit.LogError("", req.CreatorID, err)
		return nil, err
	}

	s.audit.LogCredit("", fanID, req.CreatorID, amount, models.SupportSourceDirect)
	s.log.Info().Str("support_id", support.ID).Int64("amount", amount).Msg("Direct donation recorded")
	return support, nil
}
