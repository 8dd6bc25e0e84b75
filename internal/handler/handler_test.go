package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storvbox-be/internal/auth"
	"storvbox-be/internal/cart"
	"storvbox-be/internal/category"
	"storvbox-be/internal/content"
	"storvbox-be/internal/media"
	"storvbox-be/internal/order"
	"storvbox-be/internal/payment"
	"storvbox-be/internal/product"
	"storvbox-be/internal/quote"
	"storvbox-be/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in user.RegisterInput) (string, *user.User, error) {
	args := m.Called(ctx, in)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockUserService) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id string, in user.UpdateInput) (*user.User, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserService) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*cart.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) CreateCart(ctx context.Context) (*cart.Cart, error) {
	return m.cart(m.Called(ctx))
}

func (m *MockCartService) GetCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, cartID))
}

func (m *MockCartService) FindCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, cartID))
}

func (m *MockCartService) AddLineItem(ctx context.Context, cartID string, in cart.AddInput, tier string) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, cartID, in, tier))
}

func (m *MockCartService) UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, cartID, lineItemID, quantity))
}

func (m *MockCartService) RemoveLineItem(ctx context.Context, cartID, lineItemID string) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, cartID, lineItemID))
}

func (m *MockCartService) ClearCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	return m.cart(m.Called(ctx, cartID))
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*order.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, customer order.Customer, cartID string, in order.CheckoutInput) (*order.Order, error) {
	return m.order(m.Called(ctx, customer, cartID, in))
}

func (m *MockOrderService) GetForCustomer(ctx context.Context, orderID, userID string) (*order.Order, error) {
	return m.order(m.Called(ctx, orderID, userID))
}

func (m *MockOrderService) ListForCustomer(ctx context.Context, userID string) ([]*order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID, userID string) (*order.Order, error) {
	return m.order(m.Called(ctx, orderID, userID))
}

func (m *MockOrderService) List(ctx context.Context, f order.ListFilter) (*order.Page, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Page), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, orderID string) (*order.Order, error) {
	return m.order(m.Called(ctx, orderID))
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID, status string, notes *string, actor string) (*order.Order, error) {
	return m.order(m.Called(ctx, orderID, status, notes, actor))
}

func (m *MockOrderService) AnnulOrder(ctx context.Context, orderID, reason, actor string) (*order.Order, error) {
	return m.order(m.Called(ctx, orderID, reason, actor))
}

func (m *MockOrderService) Stats(ctx context.Context) (*order.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Stats), args.Error(1)
}

func (m *MockOrderService) PaymentInstructions(o *order.Order) payment.Instructions {
	return m.Called(o).Get(0).(payment.Instructions)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListProducts(ctx context.Context, f product.Filter, tier string) ([]product.View, error) {
	args := m.Called(ctx, f, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.View), args.Error(1)
}

func (m *MockProductService) GetProductBySlugOrSku(ctx context.Context, key, tier string) (*product.View, error) {
	args := m.Called(ctx, key, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.View), args.Error(1)
}

func (m *MockProductService) SourceName() string {
	return m.Called().String(0)
}

func (m *MockProductService) AdminList(ctx context.Context) (*product.AdminList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.AdminList), args.Error(1)
}

func (m *MockProductService) product(args mock.Arguments) (*product.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, in product.CreateInput) (*product.Product, error) {
	return m.product(m.Called(ctx, in))
}

func (m *MockProductService) Update(ctx context.Context, id string, in product.UpdateInput) (*product.Product, error) {
	return m.product(m.Called(ctx, id, in))
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) Publish(ctx context.Context, id string) (*product.Product, error) {
	return m.product(m.Called(ctx, id))
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) GetCategories(ctx context.Context, filter *string) ([]*category.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

func (m *MockCategoryService) AddCategory(ctx context.Context, in category.CreateInput) (*category.Category, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) SubmitRequest(ctx context.Context, in quote.RequestInput) (*quote.Request, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.Request), args.Error(1)
}

func (m *MockQuoteService) ListRequests(ctx context.Context) ([]*quote.Request, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*quote.Request), args.Error(1)
}

func (m *MockQuoteService) SubmitContact(ctx context.Context, in quote.ContactInput) (*quote.ContactMessage, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.ContactMessage), args.Error(1)
}

func (m *MockQuoteService) ListMessages(ctx context.Context) ([]*quote.ContactMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*quote.ContactMessage), args.Error(1)
}

type MockContent struct {
	mock.Mock
}

func (m *MockContent) Posts(ctx context.Context) ([]content.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]content.Post), args.Error(1)
}

func (m *MockContent) PostBySlug(ctx context.Context, slug string) (*content.Post, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Post), args.Error(1)
}

func (m *MockContent) Categories(ctx context.Context) ([]content.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]content.Category), args.Error(1)
}

// memStore keeps uploads in memory.
type memStore struct {
	files map[string][]byte
}

func (s *memStore) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	s.files[name] = data
	return "/uploads/" + name, nil
}

// --- Helpers ---

const (
	testSecret        = "test-secret"
	testAdminEmail    = "admin@storvbox.bg"
	testAdminPassword = "AdminPass1"
)

type testDeps struct {
	users      *MockUserService
	carts      *MockCartService
	orders     *MockOrderService
	products   *MockProductService
	categories *MockCategoryService
	quotes     *MockQuoteService
	content    *MockContent
	uploads    *memStore
}

func newTestHandler() (*Handler, *testDeps) {
	d := &testDeps{
		users:      new(MockUserService),
		carts:      new(MockCartService),
		orders:     new(MockOrderService),
		products:   new(MockProductService),
		categories: new(MockCategoryService),
		quotes:     new(MockQuoteService),
		content:    new(MockContent),
		uploads:    &memStore{files: map[string][]byte{}},
	}
	h := &Handler{
		Auth: auth.NewManager(auth.Options{
			Secret:        testSecret,
			AdminEmail:    testAdminEmail,
			AdminPassword: testAdminPassword,
		}),
		UserSvc:     d.users,
		CartSvc:     d.carts,
		ProductSvc:  d.products,
		CategorySvc: d.categories,
		OrderSvc:    d.orders,
		QuoteSvc:    d.quotes,
		Content:     d.content,
		Uploader:    media.NewUploader(d.uploads),
	}
	return h, d
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Mount("/api", h.Routes())
	return r
}

func sessionCookie(t *testing.T, h *Handler, role, tier string) *http.Cookie {
	t.Helper()
	token, err := h.Auth.CreateSession(auth.SessionUser{
		ID:        "user-1",
		Email:     "alice@example.com",
		Name:      "Alice",
		Role:      role,
		PriceTier: tier,
	})
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func adminBearer(t *testing.T, h *Handler) string {
	t.Helper()
	token, _, err := h.Auth.CreateAdminToken(testAdminEmail)
	require.NoError(t, err)
	return "Bearer " + token
}

type requestOption func(*http.Request)

func withCookie(c *http.Cookie) requestOption {
	return func(r *http.Request) { r.AddCookie(c) }
}

func withAuthorization(v string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", v) }
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}
