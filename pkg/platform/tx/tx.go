// Package tx passes an ambient SQL transaction through context so
// that stores can join a caller-owned transaction without changing
// their signatures.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

// WithTx returns a context carrying t. A nil transaction leaves the
// context untouched.
func WithTx(ctx context.Context, t *sql.Tx) context.Context {
	if t == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// From reports the transaction carried by ctx, if any. Stores that
// find one must not commit or roll it back; the caller owns it.
func From(ctx context.Context) (*sql.Tx, bool) {
	t, ok := ctx.Value(ctxKey{}).(*sql.Tx)
	return t, ok
}
