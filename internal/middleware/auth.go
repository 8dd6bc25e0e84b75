package middleware

import (
	"net/http"

	"storvbox-be/internal/apperr"
	"storvbox-be/internal/auth"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/utils"
)

// TokenVerifier is satisfied by *auth.Manager.
type TokenVerifier interface {
	VerifySession(token string) *auth.SessionClaims
	VerifyAdminToken(token string) *auth.AdminClaims
}

// Session attaches the customer identity when a valid session is present.
// It never rejects: anonymous browsing of catalog and cart is allowed.
func Session(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := v.VerifySession(auth.ExtractSessionToken(r))
			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetUserContext(r.Context(), utils.Identity{
				UserID:    claims.UserID,
				Email:     claims.Email,
				Name:      claims.Name,
				Role:      claims.Role,
				PriceTier: claims.PriceTier,
			})
			ctx = logger.WithActor(ctx, "user:"+claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a customer identity.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			utils.WriteJSONError(w, apperr.MsgUnauthorized, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole must run after RequireSession.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if utils.GetUserRoleFromContext(r.Context()) != role {
				utils.WriteJSONError(w, apperr.MsgForbidden, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards the admin panel API with the Bearer admin token.
func RequireAdmin(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := v.VerifyAdminToken(auth.ExtractBearerToken(r))
			if claims == nil {
				utils.WriteJSONError(w, apperr.MsgUnauthorized, http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), utils.Identity{
				Email:   claims.Email,
				Name:    claims.Name,
				Role:    claims.Role,
				IsAdmin: true,
			})
			ctx = logger.WithActor(ctx, "admin:"+claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
