package order

import (
	"context"
	"strings"
	"unicode/utf8"

	"storvbox-be/internal/address"
	"storvbox-be/internal/analytics"
	"storvbox-be/internal/background"
	"storvbox-be/internal/cart"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/notify"
	"storvbox-be/internal/payment"
	"storvbox-be/internal/product"
	"storvbox-be/internal/utils"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100

	maxNotesLength  = 1000
	maxReasonLength = 500
)

// CartStore is satisfied by cart.Service.
type CartStore interface {
	FindCart(ctx context.Context, cartID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, cartID string) (*cart.Cart, error)
}

// Submitter is satisfied by *background.Queue.
type Submitter interface {
	Submit(ctx context.Context, name string, task background.Task) bool
}

type Service interface {
	CreateOrder(ctx context.Context, customer Customer, cartID string, in CheckoutInput) (*Order, error)
	GetForCustomer(ctx context.Context, orderID, userID string) (*Order, error)
	ListForCustomer(ctx context.Context, userID string) ([]*Order, error)
	CancelOrder(ctx context.Context, orderID, userID string) (*Order, error)

	List(ctx context.Context, f ListFilter) (*Page, error)
	Get(ctx context.Context, orderID string) (*Order, error)
	UpdateStatus(ctx context.Context, orderID, status string, notes *string, actor string) (*Order, error)
	AnnulOrder(ctx context.Context, orderID, reason, actor string) (*Order, error)
	Stats(ctx context.Context) (*Stats, error)

	PaymentInstructions(o *Order) payment.Instructions
}

type Options struct {
	Bank       payment.BankAccount
	Mailer     notify.Mailer
	Queue      Submitter
	Tracker    analytics.Tracker
	StaffEmail string
}

type service struct {
	repo  Repository
	carts CartStore
	opts  Options
}

func NewService(repo Repository, carts CartStore, opts Options) Service {
	if opts.Tracker == nil {
		opts.Tracker = analytics.Nop{}
	}
	if opts.Mailer == nil {
		opts.Mailer = notify.LogMailer{}
	}
	return &service{repo: repo, carts: carts, opts: opts}
}

func (s *service) CreateOrder(ctx context.Context, customer Customer, cartID string, in CheckoutInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("user_id", customer.ID),
		zap.String("cart_id", cartID),
	)

	// 1️⃣ Validate shipping
	shipping := in.ShippingAddress.Normalize()
	method := in.DeliveryMethod
	if method == "" {
		method = address.DeliveryCourier
	}
	if err := address.Validate(shipping, method); err != nil {
		return nil, err
	}

	notes := utils.Sanitize(in.Notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		var v utils.Validator
		v.Check(false, "notes", "Бележката е твърде дълга")
		return nil, v.Err()
	}

	// 2️⃣ Load cart
	c, err := s.carts.FindCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// 3️⃣ Snapshot lines
	o := &Order{
		OrderNumber:     utils.GenerateOrderNumber(),
		UserID:          customer.ID,
		UserEmail:       customer.Email,
		UserName:        customer.Name,
		Items:           snapshot(c.Items),
		Total:           cart.Total(c),
		ShippingAddress: shipping,
		DeliveryMethod:  method,
		Notes:           notes,
		PaymentMethod:   payment.MethodBankTransfer,
		Status:          StatusPending,
	}
	for _, it := range o.Items {
		if it.Backorder {
			o.HasBackorder = true
		}
	}

	// 4️⃣ Persist
	created, err := s.repo.Create(ctx, o)
	if err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	// 5️⃣ Clear cart; the order stands even if this fails
	if _, err := s.carts.ClearCart(ctx, c.ID); err != nil {
		log.Warn("order placed but cart not cleared", zap.String("order_id", created.ID), zap.Error(err))
	}

	// 6️⃣ Side effects
	s.notifyPlaced(ctx, created)
	s.opts.Tracker.Track(ctx, analytics.EventPurchase, analytics.Properties{
		"orderId":     created.ID,
		"orderNumber": created.OrderNumber,
		"total":       created.Total.StringFixed(2),
		"items":       len(created.Items),
	})

	log.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.String("total", created.Total.StringFixed(2)),
	)
	return created, nil
}

func snapshot(lines []cart.LineItem) []Item {
	items := make([]Item, 0, len(lines))
	for _, li := range lines {
		items = append(items, Item{
			ProductID: li.ProductID,
			VariantID: li.VariantID,
			SKU:       li.SKU,
			Name:      li.Title,
			Thumbnail: li.Thumbnail,
			Quantity:  li.Quantity,
			UnitPrice: product.FromMinor(li.UnitPrice),
			Subtotal:  product.FromMinor(li.Subtotal()),
			Backorder: li.Backorder,
		})
	}
	return items
}

func (s *service) notifyPlaced(ctx context.Context, o *Order) {
	if s.opts.Queue == nil {
		return
	}

	instructions := s.PaymentInstructions(o)
	messages := []notify.Message{confirmationMessage(o, instructions)}
	if s.opts.StaffEmail != "" {
		messages = append(messages, staffOrderMessage(o, s.opts.StaffEmail))
	}

	for _, msg := range messages {
		s.opts.Queue.Submit(ctx, "order.email", func(ctx context.Context) error {
			return s.opts.Mailer.Send(ctx, msg)
		})
	}
}

func (s *service) PaymentInstructions(o *Order) payment.Instructions {
	return payment.Build(s.opts.Bank, o.PaymentMethod, o.Total, o.OrderNumber)
}

// GetForCustomer hides other customers' orders behind NotFound.
func (s *service) GetForCustomer(ctx context.Context, orderID, userID string) (*Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		logger.FromCtx(ctx).Warn("order requested by non-owner",
			zap.String("order_id", orderID),
			zap.String("user_id", userID),
		)
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) ListForCustomer(ctx context.Context, userID string) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) CancelOrder(ctx context.Context, orderID, userID string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CancelOrder"),
		zap.String("order_id", orderID),
	)

	o, err := s.GetForCustomer(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !o.Status.Cancellable() {
		log.Info("cancel rejected", zap.String("status", string(o.Status)))
		return nil, ErrNotCancellable
	}

	cancelled := StatusCancelled
	updated, err := s.repo.UpdateStatus(ctx, orderID, StatusUpdate{Status: &cancelled, UpdatedBy: userID})
	if err != nil {
		return nil, err
	}

	log.Info("order cancelled by customer")
	return updated, nil
}

// ---------- STAFF ----------

func (s *service) List(ctx context.Context, f ListFilter) (*Page, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Skip < 0 {
		f.Skip = 0
	}

	orders, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, f.Status)
	if err != nil {
		return nil, err
	}

	return &Page{
		Orders:     orders,
		Total:      total,
		Page:       f.Skip/f.Limit + 1,
		TotalPages: (total + f.Limit - 1) / f.Limit,
	}, nil
}

func (s *service) Get(ctx context.Context, orderID string) (*Order, error) {
	return s.repo.FindByID(ctx, orderID)
}

// UpdateStatus lets staff set any of the known statuses from any state,
// terminal ones included. updated_by keeps the trail.
func (s *service) UpdateStatus(ctx context.Context, orderID, status string, notes *string, actor string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID),
		zap.String("actor", actor),
	)

	u := StatusUpdate{UpdatedBy: actor}
	if strings.TrimSpace(status) != "" {
		st, ok := ParseStatus(status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		u.Status = &st
	}
	if notes != nil {
		trimmed := utils.Sanitize(*notes)
		u.AdminNotes = &trimmed
	}
	if u.Status == nil && u.AdminNotes == nil {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.UpdateStatus(ctx, orderID, u)
	if err != nil {
		return nil, err
	}

	log.Info("order status updated by staff", zap.String("status", string(o.Status)))
	return o, nil
}

func (s *service) AnnulOrder(ctx context.Context, orderID, reason, actor string) (*Order, error) {
	reason = utils.Sanitize(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		var v utils.Validator
		v.Check(false, "reason", "Причината е твърде дълга")
		return nil, v.Err()
	}

	o, err := s.repo.Annul(ctx, orderID, reason, actor)
	if err != nil {
		return nil, err
	}

	s.opts.Tracker.Track(ctx, analytics.EventOrderAnnulled, analytics.Properties{
		"orderId": o.ID,
		"reason":  reason,
	})
	logger.FromCtx(ctx).Info("order annulled",
		zap.String("order_id", o.ID),
		zap.String("actor", actor),
	)
	return o, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.Revenue(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByStatus: map[Status]int{}, Revenue: revenue}
	for _, st := range Statuses {
		stats.ByStatus[st] = counts[st]
		stats.TotalOrders += counts[st]
	}
	return stats, nil
}
