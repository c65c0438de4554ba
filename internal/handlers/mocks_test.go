package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/supportly/backend/internal/gateway"
	mW "github.com/supportly/backend/internal/middleware"
	"github.com/supportly/backend/internal/models"
	"github.com/supportly/backend/internal/services"
)

const (
	fanID     = "0b6d3b8e-6a0f-4f4e-9a59-4c1d8e2f7a10"
	creatorID = "6f1c2a8e-2b1d-4a57-9d1f-0c1b2a3d4e5f"
)

type MockAuthenticator struct{ mock.Mock }

func (m *MockAuthenticator) Register(ctx context.Context, req services.RegisterRequest) (*services.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResponse), args.Error(1)
}

func (m *MockAuthenticator) Login(ctx context.Context, req services.LoginRequest) (*services.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResponse), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type MockAccounts struct{ mock.Mock }

func (m *MockAccounts) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAccounts) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockAccounts) FindBySupportLink(ctx context.Context, link string) (*models.User, error) {
	return m.user(m.Called(ctx, link))
}

func (m *MockAccounts) List(ctx context.Context, page models.Page) ([]models.User, models.Pagination, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]models.User), args.Get(1).(models.Pagination), args.Error(2)
}

func (m *MockAccounts) UpdateProfile(ctx context.Context, id string, in services.ProfileUpdate) (*models.User, error) {
	return m.user(m.Called(ctx, id, in))
}

func (m *MockAccounts) Deactivate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccounts) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	return m.user(m.Called(ctx, id, role))
}

type MockPosts struct{ mock.Mock }

func (m *MockPosts) post(args mock.Arguments) (*models.Post, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPosts) Create(ctx context.Context, creatorID string, in services.PostInput) (*models.Post, error) {
	return m.post(m.Called(ctx, creatorID, in))
}

func (m *MockPosts) Get(ctx context.Context, id string) (*models.Post, error) {
	return m.post(m.Called(ctx, id))
}

func (m *MockPosts) List(ctx context.Context, page models.Page) ([]models.Post, models.Pagination, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]models.Post), args.Get(1).(models.Pagination), args.Error(2)
}

func (m *MockPosts) ListByCreator(ctx context.Context, creatorID string, page models.Page) ([]models.Post, models.Pagination, error) {
	args := m.Called(ctx, creatorID, page)
	return args.Get(0).([]models.Post), args.Get(1).(models.Pagination), args.Error(2)
}

func (m *MockPosts) Update(ctx context.Context, requesterID, id string, in services.PostUpdate) (*models.Post, error) {
	return m.post(m.Called(ctx, requesterID, id, in))
}

func (m *MockPosts) Delete(ctx context.Context, requesterID, id string) error {
	return m.Called(ctx, requesterID, id).Error(0)
}

type MockDonor struct{ mock.Mock }

func (m *MockDonor) Donate(ctx context.Context, fanID string, req services.DonationRequest) (*models.Support, error) {
	args := m.Called(ctx, fanID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Support), args.Error(1)
}

type MockHistory struct{ mock.Mock }

func (m *MockHistory) ListReceived(ctx context.Context, creatorID string, page models.Page) ([]models.Support, models.Pagination, error) {
	args := m.Called(ctx, creatorID, page)
	return args.Get(0).([]models.Support), args.Get(1).(models.Pagination), args.Error(2)
}

func (m *MockHistory) ListSent(ctx context.Context, fanID string, page models.Page) ([]models.Support, models.Pagination, error) {
	args := m.Called(ctx, fanID, page)
	return args.Get(0).([]models.Support), args.Get(1).(models.Pagination), args.Error(2)
}

type MockPayments struct{ mock.Mock }

func (m *MockPayments) CreateSession(ctx context.Context, payerID string, req services.SessionRequest) (*services.SessionResponse, error) {
	args := m.Called(ctx, payerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionResponse), args.Error(1)
}

func (m *MockPayments) HandleNotification(ctx context.Context, n gateway.Notification) (services.Outcome, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(services.Outcome), args.Error(1)
}

func (m *MockPayments) GetOrder(ctx context.Context, requesterID, orderID string) (*models.Support, error) {
	args := m.Called(ctx, requesterID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Support), args.Error(1)
}

type MockCaptioner struct{ mock.Mock }

func (m *MockCaptioner) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockQR struct{ mock.Mock }

func (m *MockQR) SupportPageQR(ctx context.Context, link string) ([]byte, error) {
	args := m.Called(ctx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// testTokens stands in for the JWT issuer: a bearer token is "<userID>|<role>"
// and the account lookup answers with the role the last token carried.
type testTokens struct {
	mu    sync.Mutex
	roles map[string]string
}

func testToken(userID, role string) string { return userID + "|" + role }

func (t *testTokens) ParseToken(token string) (*services.Claims, error) {
	userID, role, ok := strings.Cut(token, "|")
	if !ok {
		return nil, errors.New("malformed token")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.roles[userID] = role
	return &services.Claims{UserID: userID, Role: role}, nil
}

func (t *testTokens) IsRevoked(context.Context, string) bool { return false }

func (t *testTokens) FindByID(_ context.Context, id string) (*models.User, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	role, ok := t.roles[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &models.User{ID: id, Role: role, IsActive: true}, nil
}

type testDeps struct {
	auth     *MockAuthenticator
	accounts *MockAccounts
	posts    *MockPosts
	donor    *MockDonor
	history  *MockHistory
	payments *MockPayments
	captions *MockCaptioner
	qr       *MockQR
	tokens   *testTokens
	checks   map[string]Check
}

func newTestDeps() *testDeps {
	return &testDeps{
		auth:     new(MockAuthenticator),
		accounts: new(MockAccounts),
		posts:    new(MockPosts),
		donor:    new(MockDonor),
		history:  new(MockHistory),
		payments: new(MockPayments),
		captions: new(MockCaptioner),
		qr:       new(MockQR),
		tokens:   &testTokens{roles: map[string]string{}},
		checks:   map[string]Check{},
	}
}

func (d *testDeps) router() http.Handler {
	log := zerolog.Nop()
	return NewRouter(RouterConfig{
		Log:            log,
		AllowedOrigins: []string{"http://localhost:3000"},
		Auth:           mW.Auth(d.tokens, d.tokens, log),
	}, Handlers{
		Users:    NewUserHandler(d.auth, d.accounts, log, false),
		QR:       NewQRHandler(d.qr, log, false),
		Posts:    NewPostHandler(d.posts, log, false),
		Support:  NewSupportHandler(d.donor, d.history, log, false),
		Payments: NewPaymentHandler(d.payments, log, false),
		AI:       NewAIHandler(d.captions, log, false),
		Health:   NewHealthHandler(d.checks),
	})
}
