package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/models"
)

const supportColumns = `id, order_id, fan_id, creator_id, amount, message, status, source, created_at`

func scanSupport(row rowScanner) (*models.Support, error) {
	var s models.Support
	if err := row.Scan(&s.ID, &s.OrderID, &s.FanID, &s.CreatorID, &s.Amount, &s.Message,
		&s.Status, &s.Source, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// SupportRecord is a confirmed donation about to be written to the ledger.
// OrderID is empty for direct donations.
type SupportRecord struct {
	OrderID   string
	FanID     string
	CreatorID string
	Amount    int64
	Message   string
	Source    string
}

// SupportLedgerService owns the supports table and is the only writer of
// creator balances.
type SupportLedgerService struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewSupportLedgerService(db *sql.DB, log zerolog.Logger) *SupportLedgerService {
	return &SupportLedgerService{
		db:  db,
		log: log.With().Str("component", "ledger").Logger(),
	}
}

// RecordSupport inserts a paid support record and credits the creator in one
// transaction. A record whose order id was already written is skipped and
// reported with created=false; the balance is left untouched.
func (s *SupportLedgerService) RecordSupport(ctx context.Context, rec SupportRecord) (*models.Support, bool, error) {
	if rec.Amount <= 0 {
		return nil, false, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if rec.Source == "" {
		rec.Source = models.SupportSourceGateway
	}

	var orderID *string
	if rec.OrderID != "" {
		orderID = &rec.OrderID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, storageError("begin ledger tx", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO supports (order_id, fan_id, creator_id, amount, message, status, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) DO NOTHING
		RETURNING `+supportColumns,
		orderID, rec.FanID, rec.CreatorID, rec.Amount, strings.TrimSpace(rec.Message),
		models.SupportStatusPaid, rec.Source)

	support, err := scanSupport(row)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Info().Str("order_id", rec.OrderID).Msg("Order already recorded, skipping credit")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageError("insert support", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET balance = balance + $1,
		    total_donations = total_donations + $1,
		    updated_at = NOW()
		WHERE id = $2 AND role = 'creator'`,
		rec.Amount, rec.CreatorID)
	if err != nil {
		return nil, false, storageError("credit creator", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, storageError("credit creator", err)
	}
	if n == 0 {
		return nil, false, fmt.Errorf("credit creator: %w", ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, storageError("commit ledger tx", err)
	}

	s.log.Info().
		Str("support_id", support.ID).
		Str("creator_id", rec.CreatorID).
		Int64("amount", rec.Amount).
		Str("source", rec.Source).
		Msg("Support recorded")
	return support, true, nil
}

func (s *SupportLedgerService) FindByOrderID(ctx context.Context, orderID string) (*models.Support, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+supportColumns+` FROM supports WHERE order_id = $1`, orderID)
	support, err := scanSupport(row)
	if err != nil {
		return nil, storageError("find support by order", err)
	}
	return support, nil
}

// ListReceived returns supports credited to a creator, newest first.
func (s *SupportLedgerService) ListReceived(ctx context.Context, creatorID string, page models.Page) ([]models.Support, models.Pagination, error) {
	return s.list(ctx, "creator_id", creatorID, page)
}

// ListSent returns supports a fan has given, newest first.
func (s *SupportLedgerService) ListSent(ctx context.Context, fanID string, page models.Page) ([]models.Support, models.Pagination, error) {
	return s.list(ctx, "fan_id", fanID, page)
}

// column is always one of the two literals above.
func (s *SupportLedgerService) list(ctx context.Context, column, accountID string, page models.Page) ([]models.Support, models.Pagination, error) {
	if !IsValidAccountID(accountID) {
		return nil, models.Pagination{}, fmt.Errorf("%w: malformed account id", ErrInvalidInput)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM supports WHERE %s = $1`, column)
	if err := s.db.QueryRowContext(ctx, countQuery, accountID).Scan(&total); err != nil {
		return nil, models.Pagination{}, storageError("count supports", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM supports
		WHERE %s = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, supportColumns, column)
	rows, err := s.db.QueryContext(ctx, query, accountID, page.Limit, page.Offset())
	if err != nil {
		return nil, models.Pagination{}, storageError("list supports", err)
	}
	defer rows.Close()

	supports := []models.Support{}
	for rows.Next() {
		support, err := scanSupport(rows)
		if err != nil {
			return nil, models.Pagination{}, storageError("scan support", err)
		}
		supports = append(supports, *support)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Pagination{}, storageError("list supports", err)
	}
	return supports, page.Paginate(total), nil
}
