package shared

import "context"

// Identity is the authenticated caller, refreshed from the users table on
// every request so a disabled or demoted account loses access immediately.
type Identity struct {
	UserID    int64
	Role      string
	OrgAdmin  *int64
	ManagerID *int64
}

type identityContextKey struct{}

// ContextWithIdentity stores the caller identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the caller identity from context.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
