package tools

import "context"

// QueryContext carries per-query metadata through the context tree so tools
// can tag their logs and requests without holding mutable state.
type QueryContext struct {
	SessionID string
	Mode      string
}

type queryKey struct{}

// WithQuery returns a child context that carries qc.
func WithQuery(ctx context.Context, qc QueryContext) context.Context {
	return context.WithValue(ctx, queryKey{}, qc)
}

// QueryCtx extracts the QueryContext from ctx.
// Returns a zero-value QueryContext if none was set.
func QueryCtx(ctx context.Context) QueryContext {
	qc, _ := ctx.Value(queryKey{}).(QueryContext)
	return qc
}
