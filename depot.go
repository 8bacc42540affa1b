// Package depot provides the public API for the depot store engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/depot"
//
// Usage:
//
//	var useCounter = depot.DefineOptions("counter", depot.Options{
//	    State: func() map[string]any { return map[string]any{"count": 0} },
//	    Actions: map[string]depot.ActionFunc{
//	        "increment": func(s *depot.Store, _ ...any) (any, error) {
//	            return nil, s.Set("count", s.Get("count").(int)+1)
//	        },
//	    },
//	})
//
//	c := depot.New()
//	counter, err := useCounter.Use(c)
package depot

import (
	"github.com/vango-dev/depot/pkg/mapping"
	"github.com/vango-dev/depot/pkg/reactive"
	"github.com/vango-dev/depot/pkg/store"
)

// =============================================================================
// Containers and stores (re-export from pkg/store)
// =============================================================================

type (
	Container  = store.Container
	Store      = store.Store
	Definition = store.Definition
	Option     = store.Option
	UseFunc    = store.UseFunc

	Options      = store.Options
	GetterFunc   = store.GetterFunc
	ActionFunc   = store.ActionFunc
	SetupFunc    = store.SetupFunc
	Setup        = store.Setup
	SetupContext = store.SetupContext

	ActionContext = store.ActionContext
	ActionHook    = store.ActionHook
	Mutation      = store.Mutation
	SubscribeFunc = store.SubscribeFunc

	Plugin        = store.Plugin
	PluginContext = store.PluginContext
	Extension     = store.Extension
	Operations    = store.Operations

	Future = store.Future
	App    = store.App
	Host   = store.Host
)

// New creates an empty container.
var New = store.New

// WithLogger sets the container logger.
var WithLogger = store.WithLogger

// WithPlugins registers plugins at creation time.
var WithPlugins = store.WithPlugins

// DefineOptions declares an options store.
var DefineOptions = store.DefineOptions

// Define declares an options store whose id is Options.ID.
var Define = store.Define

// DefineSetup declares a setup store.
var DefineSetup = store.DefineSetup

// NewHost creates a standalone host application.
var NewHost = store.NewHost

// SetActive sets the ambient container.
var SetActive = store.SetActive

// WithContainer returns a context carrying a container.
var WithContainer = store.WithContainer

// Merge deep-merges partial into target.
var Merge = store.Merge

// Future constructors.
var (
	NewFuture = store.NewFuture
	Async     = store.Async
	Resolved  = store.Resolved
	Rejected  = store.Rejected
)

// Store errors.
var (
	ErrNoContainer          = store.ErrNoContainer
	ErrCircularConstruction = store.ErrCircularConstruction
	ErrDuplicateKey         = store.ErrDuplicateKey
	ErrReadOnly             = store.ErrReadOnly
	ErrResetUnsupported     = store.ErrResetUnsupported
	ErrForeignRef           = store.ErrForeignRef
	ErrUnknownAction        = store.ErrUnknownAction
	ErrSetupFailed          = store.ErrSetupFailed
	ErrContainerDisposed    = store.ErrContainerDisposed
)

// =============================================================================
// Reactive primitives (re-export from pkg/reactive)
// =============================================================================

type (
	Signal  = store.Signal
	Ref     = store.Ref
	Watcher = reactive.Watcher
	Scope   = reactive.Scope
)

// NewSignal creates a state field for a setup store.
func NewSignal(initial any) *Signal {
	return reactive.NewSignal[any](initial)
}

// Batch groups writes so observers run once.
var Batch = reactive.Batch

// Untracked runs fn without recording dependencies.
var Untracked = reactive.Untracked

// Watch options.
var (
	Immediate = reactive.Immediate
	Deep      = reactive.Deep
	Once      = reactive.Once
)

// =============================================================================
// Mapping helpers (re-export from pkg/mapping)
// =============================================================================

var (
	MapState           = mapping.MapState
	MapStateAs         = mapping.MapStateAs
	MapActions         = mapping.MapActions
	MapActionsAs       = mapping.MapActionsAs
	MapWritableState   = mapping.MapWritableState
	MapWritableStateAs = mapping.MapWritableStateAs
)
