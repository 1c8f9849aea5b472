package logctx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into はロガーをcontextに入れる。
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From はcontextのロガーを返す（無ければslog.Default()）。
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}
