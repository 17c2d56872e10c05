// Package ready provides the readiness primitives that let a reader
// positioned earlier in a server-rendered tree wait for a value that is
// only produced by a writer positioned later in the same tree.
//
// Two flavors exist. Ready is the single-writer flag: one completion
// event, many subscribers, used by a plain synchronization boundary
// that completes at subtree exit. CoReady is the coordinated variant:
// each slot belongs to a Coordinator, which primes all of its
// registered slots at subtree exit. A primed slot releases its waiters
// only once no live sender remains outstanding, so a producer that
// acquired write evidence before the exit hook ran keeps the waiters
// suspended until it either writes or releases.
//
// The live sender count is evaluated inside the waiter's predicate
// against the versioned slot state, never snapshotted when the
// coordinator notifies. Checking it at notify time reintroduces a race
// between "notify sees zero senders" and a sender being acquired
// concurrently.
package ready
