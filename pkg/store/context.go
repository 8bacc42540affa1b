package store

import (
	"context"
	"sync/atomic"

	"github.com/vango-dev/depot/pkg/reactive"
)

type containerKey struct{}

// ContainerKey is the injection key under which Install provides the
// container to the host application.
var ContainerKey = containerKey{}

type ctxKey struct{}

// WithContainer returns a copy of ctx carrying c.
func WithContainer(ctx context.Context, c *Container) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the container carried by ctx, or nil.
func FromContext(ctx context.Context) *Container {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(ctxKey{}).(*Container)
	return c
}

var active atomic.Pointer[Container]

// SetActive sets the ambient container used as a last resort by
// Definition.UseContext. Install calls it. Passing nil clears it.
func SetActive(c *Container) {
	active.Store(c)
}

// Active returns the ambient container, or nil.
func Active() *Container {
	return active.Load()
}

// Resolve finds the container for ctx: the one carried by ctx, then the one
// injected in the current reactive scope, then the ambient container.
func Resolve(ctx context.Context) (*Container, error) {
	if c := FromContext(ctx); c != nil {
		return c, nil
	}
	if c, ok := reactive.Inject(ContainerKey).(*Container); ok && c != nil {
		return c, nil
	}
	if c := Active(); c != nil {
		return c, nil
	}
	return nil, ErrNoContainer
}
