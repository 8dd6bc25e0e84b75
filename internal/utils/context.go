package utils

import "context"

type contextKey string

const (
	identityKey contextKey = "identity"
	cartIDKey   contextKey = "cart_id"
)

// WithCartID remembers the cart the request is operating on, for logging and analytics.
func WithCartID(ctx context.Context, cartID string) context.Context {
	return context.WithValue(ctx, cartIDKey, cartID)
}

func CartIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(cartIDKey).(string)
	return v
}
