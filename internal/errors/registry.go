package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Store scoping (S001-S019)
	"S001": {
		Category:   CategoryScope,
		Message:    "Store used outside provider",
		Suggestion: "Render the component inside the store's Provider, or call Provide in an ancestor.",
	},
	"S002": {
		Category:   CategoryLookup,
		Message:    "No such tracked field",
		Suggestion: "Read only fields the store factory returned in Signals().",
	},
	"S003": {
		Category:   CategoryScope,
		Message:    "Store scope is not active",
		Suggestion: "The provider was unmounted; drop references to its store instance.",
	},
	"S004": {
		Category:   CategoryLookup,
		Message:    "Tracked field has unexpected type",
		Suggestion: "Declare the Field with the value type of the underlying cell.",
	},

	// Configuration (C001-C019)
	"C001": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration value",
		Suggestion: "Check the config file, SIGDEMO_* environment variables and flags.",
	},
	"C002": {
		Category:   CategoryConfig,
		Message:    "Config file could not be read",
		Suggestion: "Pass an existing .json, .yaml or .yml file with --config.",
	},

	// Protocol (P001-P019)
	"P001": {
		Category:   CategoryProtocol,
		Message:    "Malformed client message",
		Suggestion: `Messages are JSON objects like {"action":"randomA"}.`,
	},
	"P002": {
		Category:   CategoryProtocol,
		Message:    "Unknown action",
	},
}

// Codes returns every registered code in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a template. Call it from init functions only.
func Register(code string, t Template) {
	registry[code] = t
}
