// Package connection is the socket under a relay link.
//
// Dial opens one WebSocket to a relay server, authenticates with an
// optional bearer token and joins the link's room before returning. The
// returned Conn carries relay frames as text in both directions. Binary
// frames are ignored.
//
// Liveness is a read deadline: any inbound frame, ping or pong extends it,
// and a connection that stays silent past PingTimeout fails with
// ErrStaleConnection. A failed Conn is finished; the relay supervisor dials
// a new one.
package connection
