package demo

import "github.com/vango-dev/drizzle/pkg/hydrate"

// Components returns every demo island.
func Components(opts LoginOptions) []hydrate.Component {
	return []hydrate.Component{Counter(), LoginForm(opts)}
}

// Register adds the demo islands to the process-wide registry.
func Register(opts LoginOptions) {
	RegisterTo(hydrate.Global(), opts)
}

// RegisterTo adds the demo islands to reg.
func RegisterTo(reg *hydrate.Registry, opts LoginOptions) {
	for _, c := range Components(opts) {
		reg.Register(c)
	}
}
