package store

import (
	"github.com/google/uuid"

	"github.com/vango-dev/depot/pkg/pubsub"
)

// ActionFunc implements an action. It receives the store it is called on.
// Returning a *Future makes the action asynchronous.
type ActionFunc func(s *Store, args ...any) (any, error)

// ActionContext describes one action invocation to OnAction hooks.
type ActionContext struct {
	// ID is unique per invocation.
	ID    uuid.UUID
	Name  string
	Store *Store
	Args  []any

	after   pubsub.List[any]
	onError pubsub.List[error]
}

// After registers fn to run with the action result once it succeeds. For an
// asynchronous action that is when its future resolves.
func (ctx *ActionContext) After(fn func(result any)) {
	ctx.after.Add(fn)
}

// OnError registers fn to run when the action fails, panics or its future
// rejects. A recovered non-error panic value arrives as *PanicError.
func (ctx *ActionContext) OnError(fn func(err error)) {
	ctx.onError.Add(fn)
}

// wrapAction returns the intercepted form of fn.
func (s *Store) wrapAction(name string, fn ActionFunc) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		ctx := &ActionContext{
			ID:    uuid.New(),
			Name:  name,
			Store: s,
			Args:  args,
		}
		s.hooks.Fire(ctx)

		returned := false
		defer func() {
			if returned {
				return
			}
			if r := recover(); r != nil {
				ctx.onError.Fire(asError(r))
				panic(r)
			}
		}()
		result, err := fn(s, args...)
		returned = true

		if err != nil {
			s.logger.Debug("action failed", "store", s.id, "action", name, "error", err)
			ctx.onError.Fire(err)
			return result, err
		}

		if f, ok := result.(*Future); ok && f != nil {
			return f.Then(
				func(v any) (any, error) {
					ctx.after.Fire(v)
					return v, nil
				},
				func(err error) (any, error) {
					s.logger.Debug("action rejected", "store", s.id, "action", name, "error", err)
					ctx.onError.Fire(err)
					return nil, err
				},
			), nil
		}

		ctx.after.Fire(result)
		return result, nil
	}
}
