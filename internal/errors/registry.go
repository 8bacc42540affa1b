package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

const docBase = "https://github.com/vango-dev/depot/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Store runtime errors (D001-D019)
	// ============================================

	"D001": {
		Category:   CategoryRuntime,
		Message:    "No container available",
		Suggestion: "Pass the container explicitly with Use(c), attach it with store.WithContainer(ctx, c), or call c.Install(app).",
		DocURL:     docBase + "d001",
	},
	"D002": {
		Category:   CategoryRuntime,
		Message:    "Store requested during its own construction",
		Suggestion: "A plugin or setup function must not use the store it is building; use the *Store handed to it instead.",
		DocURL:     docBase + "d002",
	},
	"D003": {
		Category: CategoryDefinition,
		Message:  "Duplicate store key",
		DocURL:   docBase + "d003",
	},
	"D004": {
		Category: CategoryRuntime,
		Message:  "Store property is read-only",
		DocURL:   docBase + "d004",
	},
	"D005": {
		Category:   CategoryRuntime,
		Message:    "Reset is only available on options stores",
		Suggestion: "Declare the store with DefineOptions, or add a reset action to the setup store.",
		DocURL:     docBase + "d005",
	},
	"D006": {
		Category: CategoryDefinition,
		Message:  "Setup exposed state owned by another store",
		DocURL:   docBase + "d006",
	},
	"D007": {
		Category: CategoryAction,
		Message:  "Unknown action",
		DocURL:   docBase + "d007",
	},
	"D008": {
		Category: CategoryDefinition,
		Message:  "Invalid store id",
		DocURL:   docBase + "d008",
	},
	"D009": {
		Category: CategoryRuntime,
		Message:  "Store setup failed",
		DocURL:   docBase + "d009",
	},
	"D010": {
		Category:   CategoryRuntime,
		Message:    "Container has been disposed",
		Suggestion: "Create a new container with store.New after Dispose.",
		DocURL:     docBase + "d010",
	},

	// ============================================
	// Declarative definitions (D020-D029)
	// ============================================

	"D020": {
		Category: CategoryDefinition,
		Message:  "Invalid store definition file",
		DocURL:   docBase + "d020",
	},
	"D021": {
		Category: CategoryDefinition,
		Message:  "Expression failed to compile",
		DocURL:   docBase + "d021",
	},
	"D022": {
		Category: CategoryAction,
		Message:  "Expression failed to evaluate",
		DocURL:   docBase + "d022",
	},

	// ============================================
	// Persistence (D030-D039)
	// ============================================

	"D030": {
		Category: CategoryPersistence,
		Message:  "Persistence backend is closed",
		DocURL:   docBase + "d030",
	},
	"D031": {
		Category: CategoryPersistence,
		Message:  "Snapshot could not be decoded",
		DocURL:   docBase + "d031",
	},
	"D032": {
		Category: CategoryPersistence,
		Message:  "Persistence backend failed",
		DocURL:   docBase + "d032",
	},

	// ============================================
	// Configuration and CLI (D040-D049)
	// ============================================

	"D040": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		DocURL:   docBase + "d040",
	},
	"D041": {
		Category: CategoryCLI,
		Message:  "Command failed",
		DocURL:   docBase + "d041",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered error code.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// Register adds or replaces an error template. It is meant for package init.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
