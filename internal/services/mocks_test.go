package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/supportly/backend/internal/gateway"
	"github.com/supportly/backend/internal/models"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateSession(ctx context.Context, params gateway.SessionParams) (*gateway.Session, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Session), args.Error(1)
}

// memoryStore is an in-memory account and ledger store with the same
// order-id uniqueness and atomic credit as the SQL implementation.
type memoryStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	supports []models.Support
	byOrder  map[string]int
	failWith error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:   map[string]*models.User{},
		byOrder: map[string]int{},
	}
}

func (m *memoryStore) addUser(username, role string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	link := "support-" + username
	u := &models.User{
		ID:          uuid.NewString(),
		Username:    username,
		Email:       username + "@example.com",
		FullName:    username,
		Role:        role,
		IsActive:    true,
		SupportLink: &link,
	}
	m.users[u.ID] = u
	return u
}

func (m *memoryStore) balance(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Balance
}

func (m *memoryStore) supportCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.supports)
}

func (m *memoryStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("find account: %w", ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memoryStore) FindBySupportLink(ctx context.Context, link string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.SupportLink != nil && *u.SupportLink == link && u.IsActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("find account by support link: %w", ErrNotFound)
}

func (m *memoryStore) RecordSupport(ctx context.Context, rec SupportRecord) (*models.Support, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, false, m.failWith
	}
	if rec.OrderID != "" {
		if _, seen := m.byOrder[rec.OrderID]; seen {
			return nil, false, nil
		}
	}
	creator, ok := m.users[rec.CreatorID]
	if !ok || creator.Role != models.RoleCreator {
		return nil, false, fmt.Errorf("credit creator: %w", ErrNotFound)
	}

	s := models.Support{
		ID:        uuid.NewString(),
		FanID:     rec.FanID,
		CreatorID: rec.CreatorID,
		Amount:    rec.Amount,
		Message:   rec.Message,
		Status:    models.SupportStatusPaid,
		Source:    rec.Source,
	}
	if rec.OrderID != "" {
		orderID := rec.OrderID
		s.OrderID = &orderID
		m.byOrder[rec.OrderID] = len(m.supports)
	}
	m.supports = append(m.supports, s)
	creator.Balance += rec.Amount
	creator.TotalDonations += rec.Amount
	return &s, true, nil
}

func (m *memoryStore) FindByOrderID(ctx context.Context, orderID string) (*models.Support, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byOrder[orderID]
	if !ok {
		return nil, fmt.Errorf("find support by order: %w", ErrNotFound)
	}
	s := m.supports[i]
	return &s, nil
}
