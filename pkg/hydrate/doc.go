// Package hydrate hands server-rendered islands to their client instances.
//
// Components are published by name in a registry, the Go counterpart of
// the window.<Name> globals the browser runtime looks up. HydrateApp finds
// the island container, builds the component instance from the props and
// mounts it on the directive runtime, which binds the existing markup in
// place. Nothing is re-rendered.
//
//	hydrate.Register(hydrate.Component{Name: "Counter", Render: Counter, Data: CounterData})
//	rt := directive.New(doc)
//	islands := hydrate.Boot(rt) // reads the page payload scripts
//
// Every island goes Unhydrated -> Scanning -> Bound, or Unhydrated ->
// Failed. Failures are logged once with their error code and never stop
// the rest of the page from binding.
package hydrate
