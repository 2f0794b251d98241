// Package reactive is the runtime's reactive core: component instances
// with tracked properties, effects that re-run when what they read
// changes, owners that dispose groups of effects, and a scheduler that
// defers effect runs to an explicit flush.
//
// Writes never run effects synchronously. Instance.Set queues the effects
// that read the property and Scheduler.Flush runs them, so several writes
// made by one event handler produce one DOM update:
//
//	s := reactive.NewScheduler()
//	inst := reactive.NewInstance(s, reactive.Data{"count": 3})
//	s.Effect(nil, func() reactive.Cleanup {
//	    fmt.Println(inst.Get("count"))
//	    return nil
//	})
//	inst.Set("count", 4)
//	inst.Set("count", 5)
//	s.Flush() // prints 5 once
//
// Everything here is single-threaded. Loop is the only goroutine-safe
// entry point: it runs posted tasks on one goroutine and flushes after
// each.
package reactive
