package handler

import (
	"errors"
	"net/http"

	"storvbox-be/internal/analytics"
	"storvbox-be/internal/apperr"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/user"
	"storvbox-be/internal/utils"

	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in user.RegisterInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	token, u, err := h.UserSvc.Register(ctx, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	h.Auth.SetSessionCookie(w, token)
	h.tracker().Track(ctx, analytics.EventSignup, analytics.Properties{"userId": u.ID})

	utils.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "user": u})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in loginRequest
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	token, u, err := h.UserSvc.Login(ctx, in.Email, in.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	h.Auth.SetSessionCookie(w, token)
	h.tracker().Track(ctx, analytics.EventLogin, analytics.Properties{"userId": u.ID})

	utils.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Auth.ClearSessionCookie(w)
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me reloads the account so tier or role changes made by staff show up
// before the session is renewed.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	u, err := h.UserSvc.GetByID(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) {
		logger.FromCtx(ctx).Info("session user no longer exists", zap.String("user_id", userID))
		h.Auth.ClearSessionCookie(w)
		utils.WriteError(w, apperr.Unauthorized())
		return
	}
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"user": u})
}
