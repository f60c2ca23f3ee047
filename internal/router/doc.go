// Package router implements the Hub, the routing core of the relay.
//
// The Hub:
//   - Keeps receivers and emitters registered by hop identity
//   - Holds the route table as an immutable snapshot swapped on change
//   - Picks destinations per event from glob routes, two-way routes and
//     optional expression filters, skipping hops the event already visited
//   - Delivers to each destination in its own goroutine under its own timeout
//
// Dispatch never returns an error. Unroutable events are counted and
// dropped; declined, panicking and slow deliveries only affect their own
// destination.
package router
