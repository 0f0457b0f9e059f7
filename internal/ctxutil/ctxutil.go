package ctxutil

import (
	"context"
	"time"
)

// private keys to avoid collisions
type key int

const (
	keyOpName key = iota
	keyRunID
)

// WithOp tags the context with the name of the operation in flight, for logs.
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	v := ctx.Value(keyOpName)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// WithRunID carries the per-process run id assigned at startup.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRunID, id)
}

func RunID(ctx context.Context) (string, bool) {
	v := ctx.Value(keyRunID)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// DefaultDBTimeout bounds a single store round trip. Nothing in the core is
// long-running; a refresh over a term's history still finishes well inside it.
var DefaultDBTimeout = 5 * time.Second

// WithDBTimeout derives the standard DB timeout, respecting a shorter parent
// deadline if one is already set.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		if remain := time.Until(dl); remain < DefaultDBTimeout {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
