// Package transport implements the stages that sit between a codec and a socket.
//
// Stages:
//   - Chunker: splits oversized payloads and reassembles them by part number
//   - Encryption: PBKDF2-keyed authenticated tokens, or a pass-through
//   - Envelope: room-addressed JSON frames for multiplexed sockets
//
// A Pipeline applies its stages in order on the way out and in reverse on
// the way in. Stages are pure transforms; only the Chunker keeps state.
package transport
