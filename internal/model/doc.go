// Package model defines the routing data types shared by the codec, transport and router.
//
// Conventions:
//   - A hop is identified by its Source; identity strings are "kind(name)" or a bare "kind"
//   - Paths are ordered oldest hop first and are never mutated in place
//   - Route, HopFormat and HopColor values are validated before they reach the router
package model
