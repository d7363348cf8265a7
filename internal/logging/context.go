package logging

import "context"

type requestIDKey struct{}

// ContextWithRequestID returns a copy of ctx carrying id. Both backends add it
// to every entry logged with that context as "request_id".
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func withRequestID(ctx context.Context, args []any) []any {
	if id := RequestIDFromContext(ctx); id != "" {
		return append(args[:len(args):len(args)], "request_id", id)
	}
	return args
}
