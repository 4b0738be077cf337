package gateway

import "context"

type staffTokenKey struct{}

// WithStaffToken attaches a signed-in staff member's token to the context so
// privileged calls run under their identity instead of the service
// credential.
func WithStaffToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, staffTokenKey{}, token)
}

func staffTokenFrom(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(staffTokenKey{}).(string)
	return tok, ok && tok != ""
}
