package utils

import "context"

// Identity is what the auth middleware learned about the caller.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	PriceTier string
	IsAdmin   bool
}

// SetUserContext stores the caller identity (called by middleware).
func SetUserContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// GetUserIDFromContext retrieves the user id safely.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID == "" {
		return "", false
	}
	return id.UserID, true
}

func GetUserRoleFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Role
}

// GetPriceTierFromContext falls back to the standard tier for guests.
func GetPriceTierFromContext(ctx context.Context) string {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.PriceTier == "" {
		return "standard"
	}
	return id.PriceTier
}
