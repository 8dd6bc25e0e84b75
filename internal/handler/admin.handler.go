package handler

import (
	"net/http"
	"strings"
	"time"

	"storvbox-be/internal/category"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/media"
	"storvbox-be/internal/order"
	"storvbox-be/internal/product"
	"storvbox-be/internal/user"
	"storvbox-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type adminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type annulRequest struct {
	Reason string `json:"reason"`
}

type dashboardResponse struct {
	Orders     *order.Stats  `json:"orders"`
	TotalUsers int           `json:"totalUsers"`
	Products   product.Stats `json:"products"`
}

// actor is the admin email stamped into audit fields.
func actor(r *http.Request) string {
	id, _ := utils.IdentityFromContext(r.Context())
	return id.Email
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in loginRequest
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.Auth.ValidateAdminCredentials(in.Email, in.Password); err != nil {
		logger.FromCtx(ctx).Warn("admin login rejected", zap.String("email", in.Email))
		utils.WriteError(w, err)
		return
	}

	token, expiresAt, err := h.Auth.CreateAdminToken(in.Email)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to issue admin token", zap.Error(err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, adminLoginResponse{Token: token, ExpiresAt: expiresAt})
}

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.OrderSvc.Stats(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	users, err := h.UserSvc.Count(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	products, err := h.ProductSvc.AdminList(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dashboardResponse{
		Orders:     stats,
		TotalUsers: users,
		Products:   products.Stats,
	})
}

// ---------- USERS ----------

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserSvc.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in user.UpdateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	u, err := h.UserSvc.Update(r.Context(), chi.URLParam(r, "userID"), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.UserSvc.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ---------- ORDERS ----------

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	f := order.ListFilter{
		Limit: utils.QueryInt(r, "limit", order.DefaultPageSize),
		Skip:  utils.QueryInt(r, "skip", 0),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" && raw != "all" {
		st, ok := order.ParseStatus(raw)
		if !ok {
			utils.WriteError(w, order.ErrInvalidStatus)
			return
		}
		f.Status = &st
	}

	page, err := h.OrderSvc.List(r.Context(), f)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.OrderSvc.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"order":   o,
		"payment": h.OrderSvc.PaymentInstructions(o),
	})
}

// AdminUpdateOrder accepts any of the staff statuses, terminal ones included.
func (h *Handler) AdminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	o, err := h.OrderSvc.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), in.Status, in.AdminNotes, actor(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}

func (h *Handler) AdminAnnulOrder(w http.ResponseWriter, r *http.Request) {
	var in annulRequest
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	o, err := h.OrderSvc.AnnulOrder(r.Context(), chi.URLParam(r, "orderID"), in.Reason, actor(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}

// ---------- PRODUCTS ----------

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.ProductSvc.AdminList(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.CreateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	p, err := h.ProductSvc.Create(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "product": p})
}

func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.UpdateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	p, err := h.ProductSvc.Update(r.Context(), chi.URLParam(r, "productID"), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "product": p})
}

func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.ProductSvc.Delete(r.Context(), chi.URLParam(r, "productID")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) AdminPublishProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProductSvc.Publish(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "product": p})
}

// ---------- CATEGORIES ----------

func (h *Handler) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	h.ListCategories(w, r)
}

func (h *Handler) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in category.CreateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	c, err := h.CategorySvc.AddCategory(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "category": c})
}

// ---------- QUOTES & MESSAGES ----------

func (h *Handler) AdminListQuotes(w http.ResponseWriter, r *http.Request) {
	requests, err := h.QuoteSvc.ListRequests(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) AdminListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.QuoteSvc.ListMessages(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// ---------- UPLOAD ----------

// multipart framing on top of the file itself
const uploadOverhead = 1 << 20

func (h *Handler) AdminUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+uploadOverhead)

	file, _, err := r.FormFile("file")
	if err != nil {
		if media.IsTooLarge(err) {
			utils.WriteError(w, media.ErrTooLarge)
			return
		}
		logger.FromCtx(ctx).Info("upload without file", zap.Error(err))
		utils.WriteError(w, media.ErrNoFile)
		return
	}
	defer file.Close()

	up, err := h.Uploader.Upload(ctx, file)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "file": up})
}
