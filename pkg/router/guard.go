package router

import "context"

// NextFunc continues a navigation past the current guard.
// Guards pass ctx on, possibly enriched with values or a trace span.
type NextFunc func(ctx context.Context) (*Navigation, error)

// Guard wraps a navigation.
// Call next to continue; return an error without calling next to abort.
// The *Navigation returned by next may be inspected after it completes.
type Guard interface {
	Guard(ctx context.Context, req *NavigationRequest, next NextFunc) (*Navigation, error)
}

// GuardFunc is a function adapter for Guard.
type GuardFunc func(ctx context.Context, req *NavigationRequest, next NextFunc) (*Navigation, error)

// Guard implements Guard.
func (f GuardFunc) Guard(ctx context.Context, req *NavigationRequest, next NextFunc) (*Navigation, error) {
	return f(ctx, req, next)
}

// ComposeGuards builds a chain from guards and a final step.
// Guards run in order (first to last), with final at the end.
func ComposeGuards(ctx context.Context, req *NavigationRequest, guards []Guard, final NextFunc) (*Navigation, error) {
	if len(guards) == 0 {
		return final(ctx)
	}

	chain := final
	for i := len(guards) - 1; i >= 0; i-- {
		g := guards[i]
		next := chain
		chain = func(ctx context.Context) (*Navigation, error) {
			return g.Guard(ctx, req, next)
		}
	}

	return chain(ctx)
}

// Chain creates a guard that combines multiple guards in order.
func Chain(guards ...Guard) Guard {
	return GuardFunc(func(ctx context.Context, req *NavigationRequest, next NextFunc) (*Navigation, error) {
		return ComposeGuards(ctx, req, guards, next)
	})
}

// Skip bypasses g when condition is true.
func Skip(condition func(req *NavigationRequest) bool, g Guard) Guard {
	return GuardFunc(func(ctx context.Context, req *NavigationRequest, next NextFunc) (*Navigation, error) {
		if condition(req) {
			return next(ctx)
		}
		return g.Guard(ctx, req, next)
	})
}

// Only runs g only when condition is true.
func Only(condition func(req *NavigationRequest) bool, g Guard) Guard {
	return GuardFunc(func(ctx context.Context, req *NavigationRequest, next NextFunc) (*Navigation, error) {
		if !condition(req) {
			return next(ctx)
		}
		return g.Guard(ctx, req, next)
	})
}
