package auth

import "context"

type contextKey string

const (
	contextKeyOwner contextKey = "auth.owner"
	contextKeyRole  contextKey = "auth.role"
)

// WithIdentity stores auth identity details in context.
func WithIdentity(ctx context.Context, owner string, role Role) context.Context {
	ctx = context.WithValue(ctx, contextKeyOwner, owner)
	ctx = context.WithValue(ctx, contextKeyRole, role)
	return ctx
}

// OwnerFromContext extracts the broker/owner id from context.
func OwnerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if owner, ok := ctx.Value(contextKeyOwner).(string); ok {
		return owner
	}
	return ""
}

// RoleFromContext extracts role from context.
func RoleFromContext(ctx context.Context) Role {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyRole)
	if role, ok := value.(Role); ok {
		return role
	}
	if role, ok := value.(string); ok {
		if normalized, valid := NormalizeRole(role); valid {
			return normalized
		}
	}
	return ""
}

// CanEdit decides the domain-level edit capability for a resource owned by
// resourceOwner: administrators always may, brokers only for their own
// tenders.
func CanEdit(ctx context.Context, resourceOwner string) bool {
	role := RoleFromContext(ctx)
	if role == RoleAdministrator {
		return true
	}
	if role != RoleBroker {
		return false
	}
	owner := OwnerFromContext(ctx)
	return owner != "" && owner == resourceOwner
}
