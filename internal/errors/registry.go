package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render Errors (E010-E019)
	// ============================================

	"E010": {
		Category: CategoryRender,
		Message:  "Render failure recovered",
		Detail:   "A subtree failed to render and was replaced by an empty string.",
	},
	"E011": {
		Category: CategoryRender,
		Message:  "Render depth exceeded",
		Detail:   "The vnode tree is deeper than the renderer allows; it is probably cyclic.",
	},

	// ============================================
	// Hydration Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryHydration,
		Message:  "Component not registered",
		Detail:   "No component is registered under the name passed to the hydration bridge.",
	},
	"E041": {
		Category: CategoryHydration,
		Message:  "Hydration container not found",
		Detail:   "The mount container selector matched no element in the document.",
	},
	"E042": {
		Category: CategoryHydration,
		Message:  "Container already hydrated",
		Detail:   "The container already carries a component instance; hydration is not retried.",
	},
	"E043": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch: markup differs",
		Detail:   "The server-rendered markup differs from a fresh render of the component with the same props.",
	},
	"E044": {
		Category: CategoryHydration,
		Message:  "Invalid hydration payload",
		Detail:   "The page hydration payload is not a JSON object.",
	},

	// ============================================
	// Evaluator Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryEvaluator,
		Message:  "Expression syntax error",
		Detail:   "The directive expression could not be parsed; the binding is inert.",
	},
	"E061": {
		Category: CategoryEvaluator,
		Message:  "Expression evaluation failed",
		Detail:   "The expression raised an error while being evaluated, for example by calling a non-function.",
	},

	// ============================================
	// Directive Errors (E080-E099)
	// ============================================

	"E080": {
		Category: CategoryDirective,
		Message:  "Directive handler panicked",
		Detail:   "The directive handler panicked while installing or running; other bindings are unaffected.",
	},
	"E081": {
		Category: CategoryDirective,
		Message:  "Effect flush limit reached",
		Detail:   "Effects kept re-triggering each other; the remaining queue was dropped.",
	},
	"E082": {
		Category: CategoryDirective,
		Message:  "Scope already declared",
		Detail:   "An element may carry only one component instance for its lifetime.",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Configuration not found",
		Detail:   "No drizzle.json or drizzle.yaml was found.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "Port must be between 0 and 65535.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid log setting",
		Detail:   "Log level must be debug, info, warn or error and format must be text or json.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid command usage",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Action target not found",
		Detail:   "The selector passed to a replayed action matched no element.",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
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
