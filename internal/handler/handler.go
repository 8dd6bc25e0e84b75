// Package handler exposes the storefront and admin panel over REST JSON.
package handler

import (
	"context"
	"io"
	"net/http"

	"storvbox-be/internal/analytics"
	"storvbox-be/internal/auth"
	"storvbox-be/internal/cart"
	"storvbox-be/internal/category"
	"storvbox-be/internal/content"
	"storvbox-be/internal/media"
	"storvbox-be/internal/middleware"
	"storvbox-be/internal/order"
	"storvbox-be/internal/product"
	"storvbox-be/internal/quote"
	"storvbox-be/internal/user"

	"github.com/go-chi/chi/v5"
)

// ContentReader is satisfied by *content.Client.
type ContentReader interface {
	Posts(ctx context.Context) ([]content.Post, error)
	PostBySlug(ctx context.Context, slug string) (*content.Post, error)
	Categories(ctx context.Context) ([]content.Category, error)
}

// Uploader is satisfied by *media.Uploader.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader) (*media.Upload, error)
}

type Handler struct {
	Auth        *auth.Manager
	Limiter     *middleware.Limiter
	Tracker     analytics.Tracker
	UserSvc     user.Service
	CartSvc     cart.Service
	ProductSvc  product.Service
	CategorySvc category.Service
	OrderSvc    order.Service
	QuoteSvc    quote.Service
	Content     ContentReader
	Uploader    Uploader
}

func (h *Handler) tracker() analytics.Tracker {
	if h.Tracker == nil {
		return analytics.Nop{}
	}
	return h.Tracker
}

// limit is a no-op when no limiter is wired (tests).
func (h *Handler) limit(tier middleware.Tier) func(http.Handler) http.Handler {
	if h.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.Limiter.Middleware(tier)
}

// Routes mounts under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Session(h.Auth))

	r.Route("/auth", func(r chi.Router) {
		r.With(h.limit(middleware.TierStrict)).Post("/register", h.Register)
		r.With(h.limit(middleware.TierStrict)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(middleware.RequireSession).Get("/me", h.Me)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(h.limit(middleware.TierGeneral))
		r.Post("/", h.CreateCart)
		r.Route("/{cartID}", func(r chi.Router) {
			r.Use(withCartID)
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/line-items", h.AddLineItem)
			r.Patch("/line-items/{lineItemID}", h.UpdateLineItem)
			r.Delete("/line-items/{lineItemID}", h.RemoveLineItem)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.limit(middleware.TierGenerous))
		r.Get("/products", h.ListProducts)
		r.Get("/products/{key}", h.GetProduct)
		r.Get("/categories", h.ListCategories)
		r.Get("/blog", h.ListPosts)
		r.Get("/blog/categories", h.ListBlogCategories)
		r.Get("/blog/{slug}", h.GetPost)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Use(h.limit(middleware.TierGeneral))
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListMyOrders)
		r.Get("/{orderID}", h.GetMyOrder)
		r.Post("/{orderID}/cancel", h.CancelOrder)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Patch("/{orderID}/status", h.UpdateOrderStatus)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.limit(middleware.TierStrict))
		r.Post("/quote-request", h.SubmitQuote)
		r.Post("/contact", h.SubmitContact)
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(h.limit(middleware.TierStrict)).Post("/login", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.Auth))
			r.Use(h.limit(middleware.TierGeneral))

			r.Get("/dashboard", h.AdminDashboard)

			r.Get("/users", h.AdminListUsers)
			r.Patch("/users/{userID}", h.AdminUpdateUser)
			r.Delete("/users/{userID}", h.AdminDeleteUser)

			r.Get("/orders", h.AdminListOrders)
			r.Get("/orders/{orderID}", h.AdminGetOrder)
			r.Patch("/orders/{orderID}", h.AdminUpdateOrder)
			r.Post("/orders/{orderID}/annul", h.AdminAnnulOrder)

			r.Get("/products", h.AdminListProducts)
			r.Post("/products", h.AdminCreateProduct)
			r.Patch("/products/{productID}", h.AdminUpdateProduct)
			r.Delete("/products/{productID}", h.AdminDeleteProduct)
			r.Post("/products/{productID}/publish", h.AdminPublishProduct)

			r.Get("/categories", h.AdminListCategories)
			r.Post("/categories", h.AdminCreateCategory)

			r.Get("/quote-requests", h.AdminListQuotes)
			r.Get("/contact-messages", h.AdminListMessages)

			r.Post("/upload", h.AdminUpload)
		})
	})

	return r
}
