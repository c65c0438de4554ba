package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
	"github.com/supportly/backend/internal/models"
)

const qrImageSize = 256

// SupportLinkResolver finds the account behind a public support link.
type SupportLinkResolver interface {
	FindBySupportLink(ctx context.Context, link string) (*models.User, error)
}

// QRService renders scannable codes that open a creator's support page.
type QRService struct {
	accounts    SupportLinkResolver
	frontendURL string
}

func NewQRService(accounts SupportLinkResolver, frontendURL string) *QRService {
	return &QRService{
		accounts:    accounts,
		frontendURL: frontendURL,
	}
}

func (s *QRService) SupportPageURL(link string) string {
	return fmt.Sprintf("%s/support/%s", s.frontendURL, url.PathEscape(link))
}

// SupportPageQR returns a PNG for an active support link.
func (s *QRService) SupportPageQR(ctx context.Context, link string) ([]byte, error) {
	if link == "" {
		return nil, fmt.Errorf("%w: support link is required", ErrInvalidInput)
	}
	if _, err := s.accounts.FindBySupportLink(ctx, link); err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(s.SupportPageURL(link), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
