package domain

import "context"

type principalKey struct{}

// Principal carries the authenticated identity through request context.
type Principal struct {
	Name    string
	IsAdmin bool
	Type    string // "user" or "api_key"
}

// WithPrincipal stores a Principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the Principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UsernameFromContext returns the principal name, or empty string for
// unauthenticated/system contexts. Audit entries written without a
// principal are treated as system-generated.
func UsernameFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.Name
}
