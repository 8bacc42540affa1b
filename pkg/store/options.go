package store

// GetterFunc derives a value from the store. Getters are memoized and
// recompute when a state field they read changes.
type GetterFunc func(s *Store) any

// Options declares a store as initial state, getters and actions.
type Options struct {
	// ID is required by Define and set by DefineOptions.
	ID string

	// State returns a fresh initial state. It is also called by Reset.
	State func() map[string]any

	Getters map[string]GetterFunc

	Actions map[string]ActionFunc
}

// optionsSetup normalizes Options into a SetupFunc. Fields already present
// in the shared entry keep their value.
func optionsSetup(opts Options) SetupFunc {
	return func(sc *SetupContext) (Setup, error) {
		var initial map[string]any
		if opts.State != nil {
			initial = opts.State()
		}

		out := Setup{
			State:   make(map[string]*Signal, len(initial)),
			Getters: make(map[string]Ref, len(opts.Getters)),
			Actions: opts.Actions,
		}
		for key, value := range initial {
			out.State[key] = sc.State(key, value)
		}

		s := sc.Store()
		for name, getter := range opts.Getters {
			getter := getter
			out.Getters[name] = sc.Computed(func() any {
				return getter(s)
			})
		}
		return out, nil
	}
}
