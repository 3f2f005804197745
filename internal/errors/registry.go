package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Routing (S0xx)
	// ============================================

	"S001": {
		Category: CategoryRouting,
		Message:  "No route matched the request path",
		Detail:   "The request path did not match any compiled route pattern. The server responds with the 404 fallback.",
	},

	// ============================================
	// Rendering (S1xx)
	// ============================================

	"S101": {
		Category:   CategoryRender,
		Message:    "Page render function failed",
		Detail:     "The page's render function returned an error or panicked while producing output.",
		Suggestion: "Check the wrapped error for the failing component.",
	},
	"S102": {
		Category:   CategoryRender,
		Message:    "Endpoint handler missing for request method",
		Detail:     "The endpoint module exports no handler for the request's HTTP method and no ALL handler.",
		Suggestion: "Export a handler named after the HTTP method, or an ALL handler.",
	},
	"S103": {
		Category:   CategoryRender,
		Message:    "Static path is missing a value for a dynamic route param",
		Detail:     "A static-path entry enumerated for a dynamic route does not provide a value for every [param] segment, so no concrete page path can be built.",
		Suggestion: "Return a value for every dynamic param from the route's static-path enumeration.",
	},

	// ============================================
	// Configuration (S2xx)
	// ============================================

	"S201": {
		Category:   CategoryConfig,
		Message:    "Component not found in page map",
		Detail:     "The manifest references a component id with no registered module. This indicates a build/deploy mismatch, not a user error.",
		Suggestion: "Rebuild the site so the manifest and the module registry are generated together.",
	},
	"S202": {
		Category:   CategoryConfig,
		Message:    "Redirect response is missing a Location header",
		Detail:     "A redirect route produced a 3xx response without a Location header and no destination could be derived from the route table.",
		Suggestion: "Declare a destination for the redirect route in the configuration.",
	},
	"S203": {
		Category: CategoryConfig,
		Message:  "Route is missing from the manifest side-table",
		Detail:   "A matched route has no script/style entry in the manifest. This indicates a build/deploy mismatch.",
	},
	"S204": {
		Category:   CategoryConfig,
		Message:    "Project configuration file not found",
		Suggestion: "Create a strata.json in the project root.",
	},
	"S205": {
		Category:   CategoryConfig,
		Message:    "Project configuration file is invalid",
		Suggestion: "Check that strata.json is valid JSON.",
	},

	// ============================================
	// Stream state (S3xx)
	// ============================================

	"S301": {
		Category:   CategoryStream,
		Message:    "The response has already been sent to the browser and cannot be altered",
		Detail:     "The first chunk of the response body was flushed to the transport. Headers, status, and body are immutable from that point.",
		Suggestion: "Perform redirects and status changes before writing any output.",
	},
}
