// Package admin is the administrative surface over the hub and the hop
// styles.
//
// Operations:
//   - Load: apply persisted routes, formats and colors at startup
//   - Seed: fill empty store tables from configuration
//   - AddRoute, RemoveRoute: route table changes
//   - SetHopFormat, RemoveHopFormat, SetHopColor, RemoveHopColor: style changes
//
// Each change is validated first, then persisted, then applied to the live
// state.
package admin
