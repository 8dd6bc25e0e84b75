package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"storvbox-be/internal/address"
	"storvbox-be/internal/auth"
	"storvbox-be/internal/cart"
	"storvbox-be/internal/order"
	"storvbox-be/internal/payment"
	"storvbox-be/internal/product"
	"storvbox-be/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory stores so the whole checkout runs through the real services.

type memUsers struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func (r *memUsers) Create(_ context.Context, p user.CreateParams) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hash := p.PasswordHash
	u := &user.User{
		ID:           uuid.NewString(),
		Email:        p.Email,
		PasswordHash: &hash,
		Name:         p.Name,
		Role:         p.Role,
		PriceTier:    p.PriceTier,
		CreatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memUsers) FindByID(_ context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *memUsers) TouchLastLogin(context.Context, string) error { return nil }

func (r *memUsers) List(context.Context, int) ([]*user.User, error) { return nil, nil }

func (r *memUsers) Update(context.Context, string, user.UpdateInput) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (r *memUsers) Delete(context.Context, string) error { return nil }

func (r *memUsers) Count(context.Context) (int, error) { return len(r.users), nil }

type memCarts struct {
	mu    sync.Mutex
	carts map[string]cart.Cart
}

func (r *memCarts) Get(_ context.Context, id string) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[id]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	c.Items = append([]cart.LineItem(nil), c.Items...)
	return &c, nil
}

func (r *memCarts) Save(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	r.carts[c.ID] = *c
	return nil
}

func (r *memCarts) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, id)
	return nil
}

type memProducts struct {
	products []*product.Product
}

func (r *memProducts) List(context.Context, product.Filter) ([]*product.Product, error) {
	return r.products, nil
}

func (r *memProducts) FindByKey(_ context.Context, key string) (*product.Product, error) {
	for _, p := range r.products {
		if p.SKU == key || p.Slug == key {
			return p, nil
		}
	}
	return nil, product.ErrProductNotFound
}

func (r *memProducts) FindByID(_ context.Context, id string) (*product.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, product.ErrProductNotFound
}

func (r *memProducts) Create(_ context.Context, p *product.Product) (*product.Product, error) {
	r.products = append(r.products, p)
	return p, nil
}

func (r *memProducts) Update(ctx context.Context, id string, _ product.UpdateInput) (*product.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memProducts) Delete(context.Context, string) error { return nil }

func (r *memProducts) SetCommerceID(context.Context, string, string) error { return nil }

type memOrders struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func (r *memOrders) Create(_ context.Context, o *order.Order) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *o
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.orders[stored.ID] = &stored
	return &stored, nil
}

func (r *memOrders) FindByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, order.ErrOrderNotFound
}

func (r *memOrders) ListByUser(_ context.Context, userID string) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*order.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrders) List(context.Context, order.ListFilter) ([]*order.Order, error) { return nil, nil }

func (r *memOrders) Count(context.Context, *order.Status) (int, error) { return len(r.orders), nil }

func (r *memOrders) UpdateStatus(ctx context.Context, id string, u order.StatusUpdate) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *memOrders) Annul(ctx context.Context, id, _, _ string) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *memOrders) CountByStatus(context.Context) (map[order.Status]int, error) {
	return map[order.Status]int{}, nil
}

func (r *memOrders) Revenue(context.Context) (decimal.Decimal, error) { return decimal.Zero, nil }

func newFlowRouter(t *testing.T) (http.Handler, *memCarts, *memOrders, *memProducts) {
	t.Helper()

	manager := auth.NewManager(auth.Options{Secret: testSecret, AdminEmail: testAdminEmail, AdminPassword: testAdminPassword})

	products := &memProducts{products: []*product.Product{{
		ID:          "p-1",
		Name:        "Тениска с бродерия",
		Slug:        "teniska-s-broderia",
		SKU:         "SKU-1",
		Price:       decimal.NullDecimal{Decimal: decimal.RequireFromString("25.50"), Valid: true},
		PriceTiers:  []product.TierPrice{},
		Quantity:    500,
		MinQuantity: 10,
		Status:      product.StatusActive,
	}}}
	productSvc := product.NewService(products, product.NewSource(product.SourceStore, products, nil), nil)

	carts := &memCarts{carts: map[string]cart.Cart{}}
	cartSvc := cart.NewService(carts, productSvc, cart.Options{})
	orders := &memOrders{orders: map[string]*order.Order{}}

	h := &Handler{
		Auth:       manager,
		UserSvc:    user.NewService(&memUsers{users: map[string]*user.User{}}, manager),
		CartSvc:    cartSvc,
		ProductSvc: productSvc,
		OrderSvc: order.NewService(orders, cartSvc, order.Options{
			Bank: payment.BankAccount{IBAN: "BG80BNBG96611020345678", Beneficiary: "STORVBOX"},
		}),
	}
	return newRouter(h), carts, orders, products
}

func TestCheckoutFlow(t *testing.T) {
	router, carts, orders, products := newFlowRouter(t)

	// register
	rr := doJSON(t, router, http.MethodPost, "/api/auth/register", user.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// login
	rr = doJSON(t, router, http.MethodPost, "/api/auth/login", loginRequest{Email: "alice@example.com", Password: "Secret123"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	session := findCookie(rr.Result().Cookies(), auth.SessionCookieName)
	require.NotNil(t, session)

	// create cart
	rr = doJSON(t, router, http.MethodPost, "/api/cart", nil, withCookie(session))
	require.Equal(t, http.StatusCreated, rr.Code)
	cartID := decodeBody(t, rr)["id"].(string)

	// add 3 of a product with a minimum of 10
	rr = doJSON(t, router, http.MethodPost, "/api/cart/"+cartID+"/line-items",
		cart.AddInput{ProductKey: "SKU-1", Quantity: 3}, withCookie(session))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeBody(t, rr)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, float64(10), line["quantity"])
	assert.True(t, decimal.RequireFromString(line["subtotal"].(string)).Equal(decimal.RequireFromString("255.00")))

	// checkout
	rr = doJSON(t, router, http.MethodPost, "/api/orders", checkoutRequest{
		CartID: cartID,
		CheckoutInput: order.CheckoutInput{
			ShippingAddress: address.ShippingAddress{
				FullName:    "Алиса Иванова",
				Phone:       "+359888123456",
				AddressLine: "бул. Витоша 15, ет. 3",
				City:        "София",
				PostalCode:  "1000",
				Country:     "BG",
			},
			DeliveryMethod: address.DeliveryCourier,
		},
	}, withCookie(session))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	placed := decodeBody(t, rr)["order"].(map[string]any)
	assert.Equal(t, "pending_payment", placed["status"])
	assert.True(t, decimal.RequireFromString(placed["total"].(string)).Equal(decimal.RequireFromString("255.00")))
	placedItems := placed["items"].([]any)
	require.Len(t, placedItems, 1)
	assert.Equal(t, float64(10), placedItems[0].(map[string]any)["quantity"])
	assert.Equal(t, "255.00", placed["payment"].(map[string]any)["amount"])

	// stored with the customer as owner, and the cart is gone
	require.Len(t, orders.orders, 1)
	for _, o := range orders.orders {
		assert.Equal(t, "alice@example.com", o.UserEmail)
		assert.Equal(t, order.StatusPending, o.Status)
	}

	assert.NotContains(t, carts.carts, cartID)

	// and the order shows up in the customer's list
	rr = doJSON(t, router, http.MethodGet, "/api/orders", nil, withCookie(session))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody(t, rr)["orders"], 1)

	// a later price change does not reach the placed order
	products.products[0].Price = decimal.NullDecimal{Decimal: decimal.RequireFromString("99.90"), Valid: true}

	rr = doJSON(t, router, http.MethodPost, "/api/cart", nil, withCookie(session))
	require.Equal(t, http.StatusCreated, rr.Code)
	repriced := decodeBody(t, rr)["id"].(string)
	rr = doJSON(t, router, http.MethodPost, "/api/cart/"+repriced+"/line-items",
		cart.AddInput{ProductKey: "SKU-1", Quantity: 10}, withCookie(session))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	newLine := decodeBody(t, rr)["items"].([]any)[0].(map[string]any)
	assert.True(t, decimal.RequireFromString(newLine["subtotal"].(string)).Equal(decimal.RequireFromString("999.00")))

	rr = doJSON(t, router, http.MethodGet, "/api/orders/"+placed["id"].(string), nil, withCookie(session))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	stored := decodeBody(t, rr)
	assert.True(t, decimal.RequireFromString(stored["total"].(string)).Equal(decimal.RequireFromString("255.00")))
	storedLine := stored["items"].([]any)[0].(map[string]any)
	assert.True(t, decimal.RequireFromString(storedLine["unitPrice"].(string)).Equal(decimal.RequireFromString("25.50")))
}

func TestCheckoutFlow_UnknownCart(t *testing.T) {
	router, carts, orders, _ := newFlowRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/auth/register", user.RegisterInput{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "Secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = doJSON(t, router, http.MethodPost, "/api/auth/login", loginRequest{Email: "bob@example.com", Password: "Secret123"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	session := findCookie(rr.Result().Cookies(), auth.SessionCookieName)
	require.NotNil(t, session)

	rr = doJSON(t, router, http.MethodPost, "/api/orders", checkoutRequest{
		CartID: uuid.NewString(),
		CheckoutInput: order.CheckoutInput{
			ShippingAddress: address.ShippingAddress{
				FullName:    "Борис Петров",
				Phone:       "+359888123456",
				AddressLine: "ул. Шипка 3",
				City:        "Пловдив",
				PostalCode:  "4000",
				Country:     "BG",
			},
			DeliveryMethod: address.DeliveryCourier,
		},
	}, withCookie(session))

	assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	assert.Empty(t, carts.carts)
	assert.Empty(t, orders.orders)
}
