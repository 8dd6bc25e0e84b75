package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"storvbox-be/internal/address"
	"storvbox-be/internal/analytics"
	"storvbox-be/internal/apperr"
	"storvbox-be/internal/background"
	"storvbox-be/internal/cart"
	"storvbox-be/internal/notify"
	"storvbox-be/internal/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) (*Order, error) {
	args := m.Called(ctx, o)
	if fn, ok := args.Get(0).(func(*Order) *Order); ok {
		return fn(o), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, status *Status) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id string, u StatusUpdate) (*Order, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) Annul(ctx context.Context, id, reason, actor string) (*Order, error) {
	args := m.Called(ctx, id, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[Status]int), args.Error(1)
}

func (m *MockRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockCarts struct {
	mock.Mock
}

func (m *MockCarts) FindCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCarts) ClearCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(ctx context.Context, name string, props analytics.Properties) {
	m.Called(ctx, name, props)
}

// syncQueue runs tasks inline.
type syncQueue struct {
	names []string
}

func (q *syncQueue) Submit(ctx context.Context, name string, task background.Task) bool {
	q.names = append(q.names, name)
	_ = task(ctx)
	return true
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// --- Fixtures ---

var bank = payment.BankAccount{IBAN: "BG80BNBG96611020345678", Beneficiary: "Сторвбокс ЕООД"}

func alice() Customer {
	return Customer{ID: "u1", Email: "alice@example.com", Name: "Alice"}
}

func bulgarianAddress() address.ShippingAddress {
	return address.ShippingAddress{
		FullName:    "Алиса Петрова",
		Phone:       "+359888123456",
		AddressLine: "ул. Витоша 1",
		City:        "София",
		PostalCode:  "1000",
	}
}

func cartWithSKU1() *cart.Cart {
	return &cart.Cart{ID: "c1", Items: []cart.LineItem{{
		ID:          "li1",
		ProductID:   "p1",
		SKU:         "SKU-1",
		Title:       "Тениска",
		UnitPrice:   2550,
		Quantity:    10,
		MinQuantity: 10,
		MaxQuantity: 5000,
	}}}
}

func echoCreate(repo *MockRepository) {
	repo.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).
		Return(func(o *Order) *Order {
			o.ID = "o1"
			return o
		}, nil)
}

// --- Tests ---

func TestService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Snapshots the cart and starts pending payment", func(t *testing.T) {
		repo := new(MockRepository)
		carts := new(MockCarts)
		tracker := new(MockTracker)
		queue := &syncQueue{}
		mailer := &recordingMailer{}
		svc := NewService(repo, carts, Options{Bank: bank, Mailer: mailer, Queue: queue, Tracker: tracker, StaffEmail: "staff@storvbox.bg"})

		carts.On("FindCart", ctx, "c1").Return(cartWithSKU1(), nil)
		echoCreate(repo)
		carts.On("ClearCart", ctx, "c1").Return(&cart.Cart{ID: "c2"}, nil)
		tracker.On("Track", ctx, analytics.EventPurchase, mock.Anything).Return()

		o, err := svc.CreateOrder(ctx, alice(), "c1", CheckoutInput{ShippingAddress: bulgarianAddress(), Notes: "Звънете преди доставка"})
		require.NoError(t, err)

		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, StatusPendingPayment, o.Status.Public())
		assert.Equal(t, "255.00", o.Total.StringFixed(2))
		require.Len(t, o.Items, 1)
		assert.Equal(t, 10, o.Items[0].Quantity)
		assert.Equal(t, "25.50", o.Items[0].UnitPrice.StringFixed(2))
		assert.Equal(t, payment.MethodBankTransfer, o.PaymentMethod)
		assert.Equal(t, address.DeliveryCourier, o.DeliveryMethod)
		assert.Equal(t, "BG", o.ShippingAddress.Country)
		assert.True(t, strings.HasPrefix(o.OrderNumber, "ORD-"))
		assert.Equal(t, "u1", o.UserID)

		require.Len(t, mailer.sent, 2)
		assert.Equal(t, "alice@example.com", mailer.sent[0].To)
		assert.Contains(t, mailer.sent[0].Text, o.OrderNumber)
		assert.Contains(t, mailer.sent[0].Text, "BG80BNBG96611020345678")
		assert.Equal(t, "staff@storvbox.bg", mailer.sent[1].To)

		carts.AssertExpectations(t)
		tracker.AssertExpectations(t)
	})

	t.Run("Backorder lines flag the order", func(t *testing.T) {
		repo := new(MockRepository)
		carts := new(MockCarts)
		svc := NewService(repo, carts, Options{Bank: bank})

		c := cartWithSKU1()
		c.Items[0].Backorder = true
		carts.On("FindCart", ctx, "c1").Return(c, nil)
		echoCreate(repo)
		carts.On("ClearCart", ctx, "c1").Return(&cart.Cart{ID: "c2"}, nil)

		o, err := svc.CreateOrder(ctx, alice(), "c1", CheckoutInput{ShippingAddress: bulgarianAddress()})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, o.Status)
		assert.True(t, o.HasBackorder)
		assert.True(t, o.Items[0].Backorder)
	})

	t.Run("Pickup needs only name and phone", func(t *testing.T) {
		repo := new(MockRepository)
		carts := new(MockCarts)
		svc := NewService(repo, carts, Options{Bank: bank})

		carts.On("FindCart", ctx, "c1").Return(cartWithSKU1(), nil)
		echoCreate(repo)
		carts.On("ClearCart", ctx, "c1").Return(&cart.Cart{ID: "c2"}, nil)

		in := CheckoutInput{
			ShippingAddress: address.ShippingAddress{FullName: "Алиса Петрова", Phone: "0888123456"},
			DeliveryMethod:  address.DeliveryPickup,
		}
		o, err := svc.CreateOrder(ctx, alice(), "c1", in)
		require.NoError(t, err)
		assert.Equal(t, address.DeliveryPickup, o.DeliveryMethod)
	})

	t.Run("Incomplete courier address", func(t *testing.T) {
		carts := new(MockCarts)
		svc := NewService(new(MockRepository), carts, Options{})

		in := CheckoutInput{ShippingAddress: address.ShippingAddress{FullName: "Алиса Петрова", Phone: "0888123456"}}
		_, err := svc.CreateOrder(ctx, alice(), "c1", in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		carts.AssertNotCalled(t, "FindCart", mock.Anything, mock.Anything)
	})

	t.Run("Empty cart", func(t *testing.T) {
		carts := new(MockCarts)
		svc := NewService(new(MockRepository), carts, Options{})
		carts.On("FindCart", ctx, "c1").Return(&cart.Cart{ID: "c1", Items: []cart.LineItem{}}, nil)

		_, err := svc.CreateOrder(ctx, alice(), "c1", CheckoutInput{ShippingAddress: bulgarianAddress()})
		assert.ErrorIs(t, err, ErrEmptyCart)
		carts.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
	})

	t.Run("Cart clear failure does not fail checkout", func(t *testing.T) {
		repo := new(MockRepository)
		carts := new(MockCarts)
		svc := NewService(repo, carts, Options{})

		carts.On("FindCart", ctx, "c1").Return(cartWithSKU1(), nil)
		echoCreate(repo)
		carts.On("ClearCart", ctx, "c1").Return(nil, errors.New("db down"))

		o, err := svc.CreateOrder(ctx, alice(), "c1", CheckoutInput{ShippingAddress: bulgarianAddress()})
		require.NoError(t, err)
		assert.Equal(t, "o1", o.ID)
	})

	t.Run("Persist failure", func(t *testing.T) {
		repo := new(MockRepository)
		carts := new(MockCarts)
		svc := NewService(repo, carts, Options{})

		carts.On("FindCart", ctx, "c1").Return(cartWithSKU1(), nil)
		repo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down"))

		_, err := svc.CreateOrder(ctx, alice(), "c1", CheckoutInput{ShippingAddress: bulgarianAddress()})
		assert.EqualError(t, err, "db down")
		carts.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
	})
}

func TestService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	allowed := []Status{StatusPending, StatusProcessing}
	for _, st := range allowed {
		t.Run("Allowed from "+string(st), func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo, new(MockCarts), Options{})

			repo.On("FindByID", ctx, "o1").Return(&Order{ID: "o1", UserID: "u1", Status: st}, nil)
			cancelled := StatusCancelled
			repo.On("UpdateStatus", ctx, "o1", StatusUpdate{Status: &cancelled, UpdatedBy: "u1"}).
				Return(&Order{ID: "o1", UserID: "u1", Status: StatusCancelled}, nil)

			o, err := svc.CancelOrder(ctx, "o1", "u1")
			require.NoError(t, err)
			assert.Equal(t, StatusCancelled, o.Status)
		})
	}

	rejected := []Status{StatusShipped, StatusDelivered, StatusCancelled, StatusAnnulled}
	for _, st := range rejected {
		t.Run("Rejected from "+string(st), func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo, new(MockCarts), Options{})
			repo.On("FindByID", ctx, "o1").Return(&Order{ID: "o1", UserID: "u1", Status: st}, nil)

			_, err := svc.CancelOrder(ctx, "o1", "u1")
			assert.ErrorIs(t, err, ErrNotCancellable)
			assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
			repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("Someone else's order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockCarts), Options{})
		repo.On("FindByID", ctx, "o1").Return(&Order{ID: "o1", UserID: "u2", Status: StatusPending}, nil)

		_, err := svc.CancelOrder(ctx, "o1", "u1")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Alias is normalized and notes stored", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockCarts), Options{})

		pending := StatusPending
		notes := "Чака плащане"
		repo.On("UpdateStatus", ctx, "o1", StatusUpdate{Status: &pending, AdminNotes: &notes, UpdatedBy: "admin@storvbox.bg"}).
			Return(&Order{ID: "o1", Status: StatusPending, AdminNotes: &notes}, nil)

		o, err := svc.UpdateStatus(ctx, "o1", "pending_payment", &notes, "admin@storvbox.bg")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, o.Status)
	})

	t.Run("Terminal orders can be reopened by staff", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockCarts), Options{})

		processing := StatusProcessing
		repo.On("UpdateStatus", ctx, "o1", StatusUpdate{Status: &processing, UpdatedBy: "admin@storvbox.bg"}).
			Return(&Order{ID: "o1", Status: StatusProcessing}, nil)

		_, err := svc.UpdateStatus(ctx, "o1", "processing", nil, "admin@storvbox.bg")
		require.NoError(t, err)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("Unknown status", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockCarts), Options{})
		_, err := svc.UpdateStatus(ctx, "o1", "lost", nil, "admin@storvbox.bg")
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	})

	t.Run("Nothing given", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockCarts), Options{})
		_, err := svc.UpdateStatus(ctx, "o1", " ", nil, "admin@storvbox.bg")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestService_AnnulOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		tracker := new(MockTracker)
		svc := NewService(repo, new(MockCarts), Options{Tracker: tracker})

		repo.On("Annul", ctx, "o1", "Клиентът се отказа", "admin@storvbox.bg").
			Return(&Order{ID: "o1", Status: StatusAnnulled}, nil)
		tracker.On("Track", ctx, analytics.EventOrderAnnulled, mock.Anything).Return()

		o, err := svc.AnnulOrder(ctx, "o1", "  Клиентът се отказа ", "admin@storvbox.bg")
		require.NoError(t, err)
		assert.Equal(t, StatusAnnulled, o.Status)
		tracker.AssertExpectations(t)
	})

	t.Run("Reason required", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockCarts), Options{})
		_, err := svc.AnnulOrder(ctx, "o1", "   ", "admin@storvbox.bg")
		assert.ErrorIs(t, err, ErrReasonRequired)
	})

	t.Run("Reason too long", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockCarts), Options{})
		_, err := svc.AnnulOrder(ctx, "o1", strings.Repeat("я", 501), "admin@storvbox.bg")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("Not found", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockCarts), Options{})
		repo.On("Annul", ctx, "nope", "причина", "admin").Return(nil, ErrOrderNotFound)

		_, err := svc.AnnulOrder(ctx, "nope", "причина", "admin")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Pagination", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockCarts), Options{})

		repo.On("List", ctx, ListFilter{Limit: 20, Skip: 40}).Return([]*Order{{ID: "o41"}}, nil)
		repo.On("Count", ctx, (*Status)(nil)).Return(45, nil)

		page, err := svc.List(ctx, ListFilter{Limit: 20, Skip: 40})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Page)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 45, page.Total)
	})

	t.Run("Defaults and caps", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockCarts), Options{})

		repo.On("List", ctx, ListFilter{Limit: MaxPageSize}).Return([]*Order{}, nil)
		repo.On("Count", ctx, (*Status)(nil)).Return(0, nil)

		page, err := svc.List(ctx, ListFilter{Limit: 1000, Skip: -5})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 0, page.TotalPages)
	})
}

func TestService_GetForCustomer(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, new(MockCarts), Options{})

	repo.On("FindByID", ctx, "o1").Return(&Order{ID: "o1", UserID: "u1"}, nil)

	o, err := svc.GetForCustomer(ctx, "o1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	_, err = svc.GetForCustomer(ctx, "o1", "u2")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_Stats(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, new(MockCarts), Options{})

	repo.On("CountByStatus", ctx).Return(map[Status]int{StatusPending: 2, StatusDelivered: 3}, nil)
	repo.On("Revenue", ctx).Return(decimal.RequireFromString("120.50"), nil)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalOrders)
	assert.Equal(t, 0, stats.ByStatus[StatusShipped])
	assert.Len(t, stats.ByStatus, len(Statuses))
	assert.Equal(t, "120.50", stats.Revenue.StringFixed(2))
}

func TestService_PaymentInstructions(t *testing.T) {
	svc := NewService(new(MockRepository), new(MockCarts), Options{Bank: bank})
	in := svc.PaymentInstructions(&Order{OrderNumber: "ORD-1", Total: decimal.RequireFromString("255"), PaymentMethod: payment.MethodBankTransfer})

	assert.Equal(t, "255.00", in.Amount)
	assert.Equal(t, "ORD-1", in.Reference)
	assert.NotEmpty(t, in.Steps)
}
