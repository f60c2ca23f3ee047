// Package relay connects remote bots to the hub.
//
// A Link is the hub's receiver and emitter for one relay hop:
//   - Outbound, it renders with its codec, runs the transport pipeline and
//     queues frames for a writer goroutine, so Receive never blocks on I/O
//   - Inbound, it reverses the pipeline, parses with its codec, appends its
//     own hop and dispatches the event from the reading goroutine
//
// A Supervisor dials the link's server, registers the link for the length of
// each session and reconnects with exponential backoff.
package relay
