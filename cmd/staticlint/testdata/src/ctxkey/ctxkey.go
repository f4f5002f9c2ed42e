package ctxkey

import "context"

type ctxKey struct{}

type named string

func values(ctx context.Context) {
	_ = context.WithValue(ctx, "user", 1)    // want "context.WithValue key of built-in type string"
	_ = context.WithValue(ctx, 42, "answer") // want "context.WithValue key of built-in type int"
	_ = context.WithValue(ctx, ctxKey{}, 1)
	_ = context.WithValue(ctx, named("user"), 1)

	var k any = "boxed"
	_ = context.WithValue(ctx, k, 1)
}
