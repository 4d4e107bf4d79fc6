package errors

import "net/http"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	Status   int
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "webrouter.json contains a value that is out of range or malformed.",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "webrouter looks for webrouter.json in the working directory unless --config is given.",
	},
	"E142": {
		Category: CategoryConfig,
		Message:  "Route source failed to load",
		Detail:   "The route table document could not be read or decoded.",
	},
	"E143": {
		Category: CategoryConfig,
		Message:  "Unsupported route document format",
		Detail:   "Route documents must end in .yaml, .yml, .toml or .json.",
	},

	// ============================================
	// Routing Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryRouting,
		Message:  "No matching route",
		Detail:   "No route definition matches the requested path.",
		Status:   http.StatusNotFound,
	},
	"E201": {
		Category: CategoryRouting,
		Message:  "Invalid route definition",
		Detail:   "A route pattern, name or redirect rule in the table is invalid.",
		Status:   http.StatusInternalServerError,
	},
	"E202": {
		Category: CategoryRouting,
		Message:  "Unknown route name",
		Detail:   "Programmatic navigation referenced a route name that is not in the table.",
		Status:   http.StatusNotFound,
	},
	"E203": {
		Category: CategoryRouting,
		Message:  "Invalid navigation path",
		Detail:   "The path is not a valid relative URL path (backslash, NUL byte, bad escape or .. above root).",
		Status:   http.StatusBadRequest,
	},

	// ============================================
	// Navigation Errors (E204-E219)
	// ============================================

	"E204": {
		Category: CategoryNavigation,
		Message:  "Missing or invalid route parameter",
		Detail:   "Every dynamic segment needs a non-empty value of the declared type.",
		Status:   http.StatusBadRequest,
	},
	"E205": {
		Category: CategoryNavigation,
		Message:  "Navigation aborted",
		Detail:   "A navigation guard stopped the navigation.",
		Status:   http.StatusForbidden,
	},

	// ============================================
	// CLI Errors (E300-E319)
	// ============================================

	"E300": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Status:   http.StatusBadRequest,
	},

	// ============================================
	// Internal Errors
	// ============================================

	"E500": {
		Category: CategoryInternal,
		Message:  "Internal error",
		Status:   http.StatusInternalServerError,
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
