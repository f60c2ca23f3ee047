// Package codec renders routable events into bot-to-bot wire formats and parses them back.
//
// Formats:
//   - gcr: legacy "gcr [Hop1][Hop2] Sender: text"
//   - grc: v1, same layout with the "grc " prefix
//   - grcv2: "grc <v2>" with colored hop tags, a player link and a colored body
//   - native: JSON packets carrying the full event, including presence changes
//
// All codecs share a Styles table (hop formats and colors) that can be
// changed at runtime; rendering always reads the current table.
package codec
