package sessiongate

import "context"

type debugLoggingContextKey struct{}
type requestIDContextKey struct{}

// WithDebugLogging enables the per-step decision trace for operations carried on
// ctx, without persisting the setting. The HTTP middleware sets this from the
// diagnostic query flag so a single page load can be traced.
func WithDebugLogging(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugLoggingContextKey{}, enabled)
}

// WithRequestID attaches a correlation ID to ctx. The backend client forwards it
// as X-Request-ID; when absent a fresh UUID is generated per call.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func debugLoggingFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	enabled, _ := ctx.Value(debugLoggingContextKey{}).(bool)
	return enabled
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
