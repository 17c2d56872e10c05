package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Usage Errors (E101-E199)
	// ============================================

	"E101": {
		Category:   CategoryUsage,
		Message:    "signal resource created without a coordinator",
		Detail:     "A SignalResource registers a readiness slot at construction time, which requires the Coordinator of an enclosing boundary. A nil coordinator means there is no scope whose exit could ever release the paired reader.",
		Suggestion: "Create the resource inside syncssr.NewBoundary / Boundary.Run and pass boundary.Coordinator() to signal.New.",
		DocURL:     "https://vango.dev/docs/sync-ssr/errors/E101",
	},
	"E102": {
		Category:   CategoryUsage,
		Message:    "portlet created without a coordinator",
		Detail:     "A Portlet wraps a SignalResource and therefore needs the Coordinator of an enclosing boundary at construction time.",
		Suggestion: "Create the portlet inside syncssr.NewBoundary / Boundary.Run and pass boundary.Coordinator() to portlet.New.",
		DocURL:     "https://vango.dev/docs/sync-ssr/errors/E102",
	},

	// ============================================
	// Internal Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryInternal,
		Message:  "readiness sender count went negative",
		Detail:   "A sender was released more times than it was acquired. This indicates a bug in the sender bookkeeping, not in application code.",
		DocURL:   "https://vango.dev/docs/sync-ssr/errors/E201",
	},
	"E202": {
		Category: CategoryInternal,
		Message:  "readiness state regressed",
		Detail:   "A slot observed a transition out of the Completed state. Completion is terminal; a regression indicates corrupted slot state.",
		DocURL:   "https://vango.dev/docs/sync-ssr/errors/E202",
	},
}
