package client

import (
	"context"
	"fmt"
	"strings"
)

// Policy decides what happens after a 401 on an authenticated request.
type Policy string

const (
	PolicyLogout  Policy = "logout"
	PolicyRefresh Policy = "refresh"
)

// ParsePolicy accepts "logout" and "refresh", case-insensitively. Empty
// means PolicyLogout.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyLogout, nil
	case PolicyLogout, PolicyRefresh:
		return p, nil
	default:
		return "", fmt.Errorf("unknown auth failure policy %q", s)
	}
}

// SessionHooks is implemented by the session owner. The client never writes
// tokens itself: Refresh must persist the new pair before reporting true.
type SessionHooks interface {
	Refresh(ctx context.Context) bool
	Expire(ctx context.Context)
}

type skipHooksKey struct{}

// WithoutSessionHooks marks ctx so that a 401 is returned as is, without
// refreshing or expiring the session. Login uses it for its profile probe,
// whose failure it handles on its own.
func WithoutSessionHooks(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipHooksKey{}, true)
}

func hooksSkipped(ctx context.Context) bool {
	v, _ := ctx.Value(skipHooksKey{}).(bool)
	return v
}
