package model

import (
	"fmt"
	"path"
	"strings"
)

// MatchPattern reports whether a hop pattern matches an identity.
//
// Both sides are split into kind and optional name and compared with
// shell-glob syntax, case-insensitively. A pattern without a name matches
// every name of its kind. A named pattern only matches a bare-kind identity
// when its name part is "*".
func MatchPattern(pattern, identity string) bool {
	pk, pn, pHasName, err := splitIdentity(pattern)
	if err != nil {
		return false
	}
	ik, in, iHasName, err := splitIdentity(identity)
	if err != nil {
		return false
	}
	if ok, _ := path.Match(pk, ik); !ok {
		return false
	}
	if !pHasName {
		return true
	}
	if !iHasName {
		return pn == "*"
	}
	ok, _ := path.Match(strings.ToLower(pn), strings.ToLower(in))
	return ok
}

// ValidatePattern checks a hop pattern at the configuration boundary.
// The kind part must be a glob or a known kind; both parts must be valid globs.
func ValidatePattern(pattern string) error {
	kind, name, hasName, err := splitIdentity(pattern)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if _, err := path.Match(kind, ""); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	if !isGlob(kind) && !Kind(kind).Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if hasName {
		if name == "" {
			return fmt.Errorf("%w: empty name in %q", ErrInvalidPattern, pattern)
		}
		if _, err := path.Match(name, ""); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
		}
	}
	return nil
}

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// IsExactPattern reports whether the pattern names a single kind(name) hop.
func IsExactPattern(pattern string) bool {
	_, name, hasName, err := splitIdentity(pattern)
	return err == nil && hasName && !isGlob(pattern) && name != ""
}

// PatternKind returns the kind part of a pattern.
func PatternKind(pattern string) Kind {
	kind, _, _, _ := splitIdentity(pattern)
	return Kind(kind)
}
