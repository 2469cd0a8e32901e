package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Store Errors (S001-S099)
	// ============================================

	"S001": {
		Category:   CategoryStore,
		Message:    "Invalid store key",
		Detail:     "Store keys must be a string or a *store.Symbol.",
		Suggestion: "Use a string name or create an identity key with store.NewSymbol",
	},
	"S002": {
		Category:   CategoryStore,
		Message:    "Refusing to override existing value with initialization data",
		Detail:     "An initial value was provided for a key that already exists with a different value.",
		Suggestion: "Create the key without an initialization value, or use a fresh key name",
	},
	"S003": {
		Category:   CategoryStore,
		Message:    "Unknown store key",
		Detail:     "The key was read in strict mode before it was created.",
		Suggestion: "Declare the key with Store.Create or provide it in the initial values",
	},

	// ============================================
	// Binding Errors (B001-B099)
	// ============================================

	"B001": {
		Category:   CategoryBinding,
		Message:    "Refusing to overwrite store props with parent-injected props",
		Detail:     "The names exist in the store binding and are also passed down from the parent component.",
		Suggestion: "Rename the parent prop or remove the key from the binding declaration",
	},
	"B002": {
		Category: CategoryBinding,
		Message:  "Invalid binding declaration",
		Detail:   "Expected names, or up to two name lists, optionally followed by an actions factory.",
	},
	"B003": {
		Category:   CategoryBinding,
		Message:    "Setter name collision",
		Detail:     "Two writable keys produce the same setter prop name.",
		Suggestion: "Rename one of the keys",
	},
	"B004": {
		Category:   CategoryBinding,
		Message:    "Injected props share a name",
		Detail:     "A readable key, setter, action or the store prop would replace another prop injected by the same binding.",
		Suggestion: "Rename the key or action",
	},

	// ============================================
	// Config Errors (C001-C099)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Invalid seed file",
		Detail:   "The seed file must be a YAML mapping from key names to values.",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
