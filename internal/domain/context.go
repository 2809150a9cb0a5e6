package domain

import "context"

type contextKey string

const sessionShopKey contextKey = "session_shop"

// WithSessionShop stores the shop domain proven by a session token
func WithSessionShop(ctx context.Context, shop string) context.Context {
	return context.WithValue(ctx, sessionShopKey, shop)
}

// GetSessionShopFromContext returns the session shop, or "" when the request carried no token
func GetSessionShopFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionShopKey).(string); ok {
		return v
	}
	return ""
}
