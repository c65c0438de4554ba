package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/supportly/backend/internal/audit"
	"github.com/supportly/backend/internal/config"
	"github.com/supportly/backend/internal/gateway"
	"github.com/supportly/backend/internal/models"
)

const testServerKey = "SB-Mid-server-test"

func newTestPaymentService(store *memoryStore, gw gateway.Gateway, rdb *redis.Client) *PaymentService {
	return NewPaymentService(
		store,
		store,
		gw,
		gateway.NewSignatureVerifier(testServerKey),
		rdb,
		audit.NewAuditLogger(zerolog.Nop()),
		config.MidtransConfig{ServerKey: testServerKey, ExpiryMinutes: 60, Timeout: time.Second},
		config.PaymentConfig{SessionLimit: 3, SessionWindow: time.Hour},
		zerolog.Nop(),
	)
}

// settlement builds a correctly signed notification.
func settlement(orderID, gross, transactionStatus, fraudStatus, recipientID, payerID string) gateway.Notification {
	n := gateway.Notification{
		TransactionStatus: transactionStatus,
		FraudStatus:       fraudStatus,
		OrderID:           orderID,
		GrossAmount:       gateway.FlexString(gross),
		StatusCode:        "200",
		RecipientID:       recipientID,
		PayerID:           payerID,
		Message:           "semangat!",
	}
	n.SignatureKey = gateway.NewSignatureVerifier(testServerKey).Sign(n.OrderID, n.StatusCode.String(), n.GrossAmount.String())
	return n
}

func TestClassify(t *testing.T) {
	tests := []struct {
		status string
		fraud  string
		want   Outcome
	}{
		{"capture", "accept", OutcomeConfirmed},
		{"settlement", "accept", OutcomeConfirmed},
		{"settlement", "challenge", OutcomeRejected},
		{"capture", "deny", OutcomeRejected},
		{"capture", "", OutcomeRejected},
		{"pending", "", OutcomePending},
		{"pending", "accept", OutcomePending},
		{"deny", "accept", OutcomeRejected},
		{"expire", "", OutcomeRejected},
		{"cancel", "", OutcomeRejected},
		{"refund", "accept", OutcomeUnknown},
		{"", "", OutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.fraud, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status, tt.fraud))
		})
	}
}

func TestPaymentService_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("successful session", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, nil)

		gw.On("CreateSession", mock.Anything, mock.MatchedBy(func(p gateway.SessionParams) bool {
			return len(p.OrderID) > len(orderIDPrefix) &&
				p.OrderID[:len(orderIDPrefix)] == orderIDPrefix &&
				p.GrossAmount == 50000 &&
				p.PayerEmail == fan.Email &&
				p.RecipientLabel == "creator" &&
				p.ExpiryMinutes == 60 &&
				p.Metadata.RecipientID == creator.ID &&
				p.Metadata.PayerID == fan.ID &&
				p.Metadata.Message == "hello"
		})).Return(&gateway.Session{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}, nil)

		resp, err := svc.CreateSession(ctx, fan.ID, SessionRequest{
			RecipientID: creator.ID,
			Amount:      decimal.NewFromInt(50000),
			Message:     "  hello ",
		})

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "snap-token", resp.SessionToken)
		assert.Contains(t, resp.OrderID, orderIDPrefix)
		gw.AssertExpectations(t)
		assert.Equal(t, 0, store.supportCount())
	})

	t.Run("order ids are unique across sessions", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, nil)
		gw.On("CreateSession", mock.Anything, mock.Anything).Return(&gateway.Session{Token: "t"}, nil)

		seen := map[string]bool{}
		for i := 0; i < 20; i++ {
			resp, err := svc.CreateSession(ctx, fan.ID, SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(1000)})
			require.NoError(t, err)
			assert.False(t, seen[resp.OrderID])
			seen[resp.OrderID] = true
		}
	})

	rejected := []struct {
		name    string
		amount  decimal.Decimal
		badID   bool
		wantErr error
	}{
		{"malformed recipient id", decimal.NewFromInt(1000), true, ErrInvalidInput},
		{"zero amount", decimal.Zero, false, ErrInvalidInput},
		{"negative amount", decimal.NewFromInt(-5000), false, ErrInvalidInput},
		{"fractional amount", decimal.RequireFromString("1000.5"), false, ErrInvalidInput},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			creator := store.addUser("creator", models.RoleCreator)
			fan := store.addUser("fan", models.RoleFan)
			gw := new(MockGateway)
			svc := newTestPaymentService(store, gw, nil)

			recipientID := creator.ID
			if tt.badID {
				recipientID = "64b7f0c2e4b0a1a2b3c4d5e6"
			}
			_, err := svc.CreateSession(ctx, fan.ID, SessionRequest{RecipientID: recipientID, Amount: tt.amount})

			assert.ErrorIs(t, err, tt.wantErr)
			gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
		})
	}

	t.Run("unknown recipient is not found without gateway call", func(t *testing.T) {
		store := newMemoryStore()
		fan := store.addUser("fan", models.RoleFan)
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, nil)

		_, err := svc.CreateSession(ctx, fan.ID, SessionRequest{
			RecipientID: "6f1c2a8e-2b1d-4a57-9d1f-0c1b2a3d4e5f",
			Amount:      decimal.NewFromInt(1000),
		})

		assert.ErrorIs(t, err, ErrNotFound)
		gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("recipient without creator role is not found", func(t *testing.T) {
		store := newMemoryStore()
		other := store.addUser("otherfan", models.RoleFan)
		fan := store.addUser("fan", models.RoleFan)
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, nil)

		_, err := svc.CreateSession(ctx, fan.ID, SessionRequest{RecipientID: other.ID, Amount: decimal.NewFromInt(1000)})

		assert.ErrorIs(t, err, ErrNotFound)
		gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("missing payer is not found", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, nil)

		_, err := svc.CreateSession(ctx, "0b6b2f4e-8c1d-4e7a-9a55-2f1c3d4e5f60", SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(1000)})

		assert.ErrorIs(t, err, ErrNotFound)
		gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("self support is invalid", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, nil)

		_, err := svc.CreateSession(ctx, creator.ID, SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(1000)})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("gateway failure is hidden behind ErrGateway", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, nil)
		gw.On("CreateSession", mock.Anything, mock.Anything).Return(nil, errors.New("snap create transaction: Access denied due to unauthorized transaction"))

		_, err := svc.CreateSession(ctx, fan.ID, SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(1000)})

		assert.ErrorIs(t, err, ErrGateway)
		assert.NotContains(t, err.Error(), "Access denied")
	})
}

func TestPaymentService_CreateSession_RateLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("limit reached", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		rdb, rmock := redismock.NewClientMock()
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, rdb)

		rmock.ExpectIncr(rateLimitKey(fan.ID)).SetVal(4)

		_, err := svc.CreateSession(ctx, fan.ID, SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(1000)})

		assert.ErrorIs(t, err, ErrRateLimited)
		gw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("first session opens the window", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		rdb, rmock := redismock.NewClientMock()
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, rdb)
		gw.On("CreateSession", mock.Anything, mock.Anything).Return(&gateway.Session{Token: "t"}, nil)

		key := rateLimitKey(fan.ID)
		rmock.ExpectIncr(key).SetVal(1)
		rmock.ExpectExpire(key, time.Hour).SetVal(true)

		_, err := svc.CreateSession(ctx, fan.ID, SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(1000)})

		require.NoError(t, err)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("gateway failure gives the slot back", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		rdb, rmock := redismock.NewClientMock()
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, rdb)
		gw.On("CreateSession", mock.Anything, mock.Anything).Return(nil, errors.New("snap create transaction: 500"))

		key := rateLimitKey(fan.ID)
		rmock.ExpectIncr(key).SetVal(2)
		rmock.ExpectDecr(key).SetVal(1)

		_, err := svc.CreateSession(ctx, fan.ID, SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(1000)})

		assert.ErrorIs(t, err, ErrGateway)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("redis outage does not block payments", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		rdb, rmock := redismock.NewClientMock()
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, rdb)
		gw.On("CreateSession", mock.Anything, mock.Anything).Return(&gateway.Session{Token: "t"}, nil)

		rmock.ExpectIncr(rateLimitKey(fan.ID)).SetErr(errors.New("connection refused"))

		_, err := svc.CreateSession(ctx, fan.ID, SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(1000)})

		assert.NoError(t, err)
	})

	t.Run("unknown recipient is reported before the limit", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		store := newMemoryStore()
		fan := store.addUser("fan", models.RoleFan)
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, rdb)

		key := rateLimitKey(fan.ID)
		require.NoError(t, mr.Set(key, "3"))

		_, err := svc.CreateSession(ctx, fan.ID, SessionRequest{
			RecipientID: "6f1c2a8e-2b1d-4a57-9d1f-0c1b2a3d4e5f",
			Amount:      decimal.NewFromInt(1000),
		})

		assert.ErrorIs(t, err, ErrNotFound)
		got, _ := mr.Get(key)
		assert.Equal(t, "3", got)
	})
}

func TestPaymentService_CreateSession_ConcurrentLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := newMemoryStore()
	creator := store.addUser("creator", models.RoleCreator)
	fan := store.addUser("fan", models.RoleFan)
	gw := new(MockGateway)
	gw.On("CreateSession", mock.Anything, mock.Anything).
		After(5*time.Millisecond).
		Return(&gateway.Session{Token: "t"}, nil)
	svc := newTestPaymentService(store, gw, rdb)

	const attempts = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		limited int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateSession(context.Background(), fan.ID, SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(1000)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrRateLimited):
				limited++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, created)
	assert.Equal(t, attempts-3, limited)
	gw.AssertNumberOfCalls(t, "CreateSession", 3)
	assert.Equal(t, time.Hour, mr.TTL(rateLimitKey(fan.ID)))
}

func TestPaymentService_CreateSession_GatewayTimeout(t *testing.T) {
	store := newMemoryStore()
	creator := store.addUser("creator", models.RoleCreator)
	fan := store.addUser("fan", models.RoleFan)
	gw := new(MockGateway)
	gw.On("CreateSession", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("snap create transaction: %w", context.DeadlineExceeded))
	svc := newTestPaymentService(store, gw, nil)

	_, err := svc.CreateSession(context.Background(), fan.ID, SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(1000)})

	assert.ErrorIs(t, err, ErrGateway)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, store.supportCount())
}

func TestPaymentService_HandleNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed payment credits recipient once", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		svc := newTestPaymentService(store, new(MockGateway), nil)

		for _, gross := range []string{"25000", "10000.00"} {
			before := store.balance(creator.ID)
			n := settlement("SUP-"+gross, gross, "capture", "accept", creator.ID, fan.ID)

			outcome, err := svc.HandleNotification(ctx, n)

			require.NoError(t, err)
			assert.Equal(t, OutcomeConfirmed, outcome)
			want, _ := grossAmount(gross)
			assert.Equal(t, before+want, store.balance(creator.ID))
		}
		assert.Equal(t, 2, store.supportCount())
	})

	t.Run("redelivery is a no-op", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		svc := newTestPaymentService(store, new(MockGateway), nil)
		n := settlement("SUP-dup", "50000.00", "settlement", "accept", creator.ID, fan.ID)

		for i := 0; i < 3; i++ {
			outcome, err := svc.HandleNotification(ctx, n)
			require.NoError(t, err)
			assert.Equal(t, OutcomeConfirmed, outcome)
		}

		assert.Equal(t, int64(50000), store.balance(creator.ID))
		assert.Equal(t, 1, store.supportCount())
	})

	t.Run("concurrent redelivery credits once", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		svc := newTestPaymentService(store, new(MockGateway), nil)
		n := settlement("SUP-race", "7000", "settlement", "accept", creator.ID, fan.ID)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.HandleNotification(ctx, n)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(7000), store.balance(creator.ID))
		assert.Equal(t, 1, store.supportCount())
	})

	nonConfirming := []struct {
		status  string
		fraud   string
		outcome Outcome
	}{
		{"capture", "challenge", OutcomeRejected},
		{"settlement", "deny", OutcomeRejected},
		{"pending", "", OutcomePending},
		{"deny", "", OutcomeRejected},
		{"expire", "", OutcomeRejected},
		{"cancel", "", OutcomeRejected},
		{"refund", "accept", OutcomeUnknown},
	}
	for _, tt := range nonConfirming {
		t.Run("no mutation on "+tt.status+"/"+tt.fraud, func(t *testing.T) {
			store := newMemoryStore()
			creator := store.addUser("creator", models.RoleCreator)
			fan := store.addUser("fan", models.RoleFan)
			svc := newTestPaymentService(store, new(MockGateway), nil)

			outcome, err := svc.HandleNotification(ctx, settlement("SUP-x", "50000", tt.status, tt.fraud, creator.ID, fan.ID))

			require.NoError(t, err)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, int64(0), store.balance(creator.ID))
			assert.Equal(t, 0, store.supportCount())
		})
	}

	t.Run("forged signature is rejected", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		svc := newTestPaymentService(store, new(MockGateway), nil)

		n := settlement("SUP-forged", "50000", "settlement", "accept", creator.ID, fan.ID)
		n.GrossAmount = "5000000"

		_, err := svc.HandleNotification(ctx, n)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, int64(0), store.balance(creator.ID))
		assert.Equal(t, 0, store.supportCount())
	})

	t.Run("unsigned notification is rejected", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		svc := newTestPaymentService(store, new(MockGateway), nil)

		n := settlement("SUP-unsigned", "50000", "settlement", "accept", creator.ID, fan.ID)
		n.SignatureKey = ""

		_, err := svc.HandleNotification(ctx, n)

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, 0, store.supportCount())
	})

	anomalies := []struct {
		name  string
		gross string
		build func(creator, fan *models.User) (string, string)
	}{
		{"unknown recipient", "1000", func(c, f *models.User) (string, string) {
			return "6f1c2a8e-2b1d-4a57-9d1f-0c1b2a3d4e5f", f.ID
		}},
		{"unknown payer", "1000", func(c, f *models.User) (string, string) {
			return c.ID, "6f1c2a8e-2b1d-4a57-9d1f-0c1b2a3d4e5f"
		}},
		{"malformed ids", "1000", func(c, f *models.User) (string, string) {
			return "not-an-id", ""
		}},
		{"recipient is a fan", "1000", func(c, f *models.User) (string, string) {
			return f.ID, c.ID
		}},
		{"unparseable gross amount", "abc", func(c, f *models.User) (string, string) {
			return c.ID, f.ID
		}},
		{"zero gross amount", "0.00", func(c, f *models.User) (string, string) {
			return c.ID, f.ID
		}},
	}
	for _, tt := range anomalies {
		t.Run("acknowledges "+tt.name, func(t *testing.T) {
			store := newMemoryStore()
			creator := store.addUser("creator", models.RoleCreator)
			fan := store.addUser("fan", models.RoleFan)
			svc := newTestPaymentService(store, new(MockGateway), nil)
			recipientID, payerID := tt.build(creator, fan)

			outcome, err := svc.HandleNotification(ctx, settlement("SUP-anomaly", tt.gross, "settlement", "accept", recipientID, payerID))

			require.NoError(t, err)
			assert.Equal(t, OutcomeIgnored, outcome)
			assert.Equal(t, int64(0), store.balance(creator.ID))
			assert.Equal(t, 0, store.supportCount())
		})
	}

	t.Run("storage failure asks for redelivery", func(t *testing.T) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		store.failWith = errors.New("connection reset by peer")
		svc := newTestPaymentService(store, new(MockGateway), nil)

		_, err := svc.HandleNotification(ctx, settlement("SUP-fail", "1000", "settlement", "accept", creator.ID, fan.ID))

		assert.Error(t, err)
		assert.Equal(t, int64(0), store.balance(creator.ID))
	})
}

func TestPaymentService_EndToEnd(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, fraud string) (*memoryStore, *models.User, Outcome) {
		store := newMemoryStore()
		creator := store.addUser("creator", models.RoleCreator)
		fan := store.addUser("fan", models.RoleFan)
		gw := new(MockGateway)
		svc := newTestPaymentService(store, gw, nil)

		var params gateway.SessionParams
		gw.On("CreateSession", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { params = args.Get(1).(gateway.SessionParams) }).
			Return(&gateway.Session{Token: "snap-token"}, nil)

		resp, err := svc.CreateSession(ctx, fan.ID, SessionRequest{RecipientID: creator.ID, Amount: decimal.NewFromInt(50000)})
		require.NoError(t, err)
		assert.Equal(t, "snap-token", resp.SessionToken)

		n := settlement(params.OrderID, "50000", "settlement", fraud, params.Metadata.RecipientID, params.Metadata.PayerID)
		outcome, err := svc.HandleNotification(ctx, n)
		require.NoError(t, err)
		return store, creator, outcome
	}

	t.Run("settlement accepted", func(t *testing.T) {
		store, creator, outcome := run(t, "accept")

		assert.Equal(t, OutcomeConfirmed, outcome)
		assert.Equal(t, int64(50000), store.balance(creator.ID))
		require.Equal(t, 1, store.supportCount())
		assert.Equal(t, models.SupportStatusPaid, store.supports[0].Status)
		assert.Equal(t, "semangat!", store.supports[0].Message)
	})

	t.Run("settlement challenged", func(t *testing.T) {
		store, creator, outcome := run(t, "challenge")

		assert.Equal(t, OutcomeRejected, outcome)
		assert.Equal(t, int64(0), store.balance(creator.ID))
		assert.Equal(t, 0, store.supportCount())
	})
}

func TestPaymentService_GetOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	creator := store.addUser("creator", models.RoleCreator)
	fan := store.addUser("fan", models.RoleFan)
	stranger := store.addUser("stranger", models.RoleFan)
	svc := newTestPaymentService(store, new(MockGateway), nil)

	_, err := svc.HandleNotification(ctx, settlement("SUP-order", "1500", "capture", "accept", creator.ID, fan.ID))
	require.NoError(t, err)

	t.Run("payer and recipient can read", func(t *testing.T) {
		for _, id := range []string{fan.ID, creator.ID} {
			support, err := svc.GetOrder(ctx, id, "SUP-order")
			require.NoError(t, err)
			assert.Equal(t, int64(1500), support.Amount)
		}
	})

	t.Run("others are forbidden", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, stranger.ID, "SUP-order")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unconfirmed order is not found", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, fan.ID, "SUP-missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("foreign order id format", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, fan.ID, "ORDER-1")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
