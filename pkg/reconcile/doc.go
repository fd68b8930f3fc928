// Package reconcile keeps a laid-out task graph in sync with the
// orchestrator.
//
// A [Reconciler] owns one event loop goroutine ([Reconciler.Run]). Every
// piece of mutable state (scope, direction, refresh settings, the last good
// graph, hover and selection) lives on that goroutine; the public methods
// send commands to it and wait for the answer. Snapshots are fetched on a
// separate goroutine per request, and results come back tagged with a
// generation number:
//
//	trigger ──► gen++ ──► fetch(gen) ─ ─ ─► result(gen)
//	                                          │
//	                      gen still current? ─┴─► build ► layout ► rebind hover ► publish
//
// A scope or direction change cancels the in-flight fetch and bumps the
// generation, so a late answer to a superseded request is dropped. Timer
// ticks, task_created events and manual refreshes that arrive while a fetch
// is running are coalesced into one follow-up fetch; there is never more
// than one fetch in flight.
//
// Failed fetches keep the last good graph on screen, marked stale, with the
// error on the view. Changing scope discards the old graph.
//
// Views are published to subscribers after every state change. A slow
// subscriber only ever sees the latest view.
package reconcile
