package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/models"
)

const userColumns = `id, username, email, password, full_name, avatar, bio, support_link,
	is_verified, role, balance, total_donations, is_active, last_login, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FullName, &u.Avatar, &u.Bio,
		&u.SupportLink, &u.IsVerified, &u.Role, &u.Balance, &u.TotalDonations, &u.IsActive,
		&u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AccountService is the account store: lookups, profile changes and
// deactivation. Balances are never written here; see SupportLedgerService.
type AccountService struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewAccountService(db *sql.DB, log zerolog.Logger) *AccountService {
	return &AccountService{
		db:  db,
		log: log.With().Str("component", "accounts").Logger(),
	}
}

type NewAccount struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
}

// Create inserts an account with a generated id and a default support link.
func (s *AccountService) Create(ctx context.Context, in NewAccount) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	supportLink := "support-" + strings.ToLower(username)

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password, full_name, role, support_link)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		username, strings.ToLower(strings.TrimSpace(in.Email)), in.PasswordHash,
		strings.TrimSpace(in.FullName), in.Role, supportLink)

	u, err := scanUser(row)
	if err != nil {
		return nil, storageError("create account", err)
	}
	s.log.Info().Str("user_id", u.ID).Str("role", u.Role).Msg("Account created")
	return u, nil
}

// FindByID returns the account regardless of its active flag.
func (s *AccountService) FindByID(ctx context.Context, id string) (*models.User, error) {
	if !IsValidAccountID(id) {
		return nil, fmt.Errorf("%w: malformed account id", ErrInvalidInput)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, storageError("find account", err)
	}
	return u, nil
}

func (s *AccountService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	u, err := scanUser(row)
	if err != nil {
		return nil, storageError("find account by email", err)
	}
	return u, nil
}

// FindBySupportLink returns the active account behind a public support page.
func (s *AccountService) FindBySupportLink(ctx context.Context, link string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE support_link = $1 AND is_active = TRUE`, link)
	u, err := scanUser(row)
	if err != nil {
		return nil, storageError("find account by support link", err)
	}
	return u, nil
}

// List returns active accounts, newest first.
func (s *AccountService) List(ctx context.Context, page models.Page) ([]models.User, models.Pagination, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_active = TRUE`).Scan(&total); err != nil {
		return nil, models.Pagination{}, storageError("count accounts", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, page.Limit, page.Offset())
	if err != nil {
		return nil, models.Pagination{}, storageError("list accounts", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, models.Pagination{}, storageError("scan account", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Pagination{}, storageError("list accounts", err)
	}

	return users, page.Paginate(total), nil
}

// ProfileUpdate carries optional fields; nil means unchanged.
type ProfileUpdate struct {
	FullName *string
	Bio      *string
	Avatar   *string
}

func (s *AccountService) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*models.User, error) {
	if !IsValidAccountID(id) {
		return nil, fmt.Errorf("%w: malformed account id", ErrInvalidInput)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    bio = COALESCE($3, bio),
		    avatar = COALESCE($4, avatar),
		    updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING `+userColumns,
		id, in.FullName, in.Bio, in.Avatar)

	u, err := scanUser(row)
	if err != nil {
		return nil, storageError("update profile", err)
	}
	return u, nil
}

// Deactivate soft-deletes an account. Accounts are never removed.
func (s *AccountService) Deactivate(ctx context.Context, id string) error {
	if !IsValidAccountID(id) {
		return fmt.Errorf("%w: malformed account id", ErrInvalidInput)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return storageError("deactivate account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("deactivate account", err)
	}
	if n == 0 {
		return fmt.Errorf("deactivate account: %w", ErrNotFound)
	}
	s.log.Info().Str("user_id", id).Msg("Account deactivated")
	return nil
}

func (s *AccountService) TouchLastLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return storageError("touch last login", err)
}

// UpdateRole changes an account role; admins only, enforced by the caller.
func (s *AccountService) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	switch role {
	case models.RoleFan, models.RoleCreator, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if !IsValidAccountID(id) {
		return nil, fmt.Errorf("%w: malformed account id", ErrInvalidInput)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, role)
	u, err := scanUser(row)
	if err != nil {
		return nil, storageError("update role", err)
	}
	s.log.Info().Str("user_id", id).Str("role", role).Msg("Account role changed")
	return u, nil
}
