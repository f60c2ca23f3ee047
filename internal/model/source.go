package model

import (
	"errors"
	"fmt"
	"strings"
)

// Errors
var (
	ErrUnknownKind     = errors.New("unknown hop kind")
	ErrInvalidIdentity = errors.New("invalid hop identity")
	ErrInvalidPattern  = errors.New("invalid hop pattern")
)

// Kind is the type of a hop.
type Kind string

const (
	KindOrg         Kind = "aoorg"
	KindPriv        Kind = "aopriv"
	KindTell        Kind = "aotell"
	KindWeb         Kind = "web"
	KindDiscordPriv Kind = "discordpriv"
	KindDiscordMsg  Kind = "discordmsg"
	KindTradebot    Kind = "tradebot"
	KindIrc         Kind = "irc"
	KindLog         Kind = "log"
	KindSystem      Kind = "system"
	KindConsole     Kind = "console"
	KindRelay       Kind = "relay"
)

// Kinds lists every known hop kind.
var Kinds = []Kind{
	KindOrg, KindPriv, KindTell, KindWeb, KindDiscordPriv, KindDiscordMsg,
	KindTradebot, KindIrc, KindLog, KindSystem, KindConsole, KindRelay,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Source identifies one hop of a message's travel history.
type Source struct {
	Kind      Kind
	Name      string
	Label     string // Display name, cosmetic only
	Dimension int    // Game world id
}

// NewSource creates a Source without label.
func NewSource(kind Kind, name string, dimension int) Source {
	return Source{Kind: kind, Name: name, Dimension: dimension}
}

// Identity returns the canonical "kind(name)" string, or just "kind" when unnamed.
func (s Source) Identity() string {
	if s.Name == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + "(" + s.Name + ")"
}

// SameHop reports whether both sources name the same hop. Names compare
// case-insensitively, as in hop patterns and the hub registry. Labels are ignored.
func (s Source) SameHop(other Source) bool {
	return s.Kind == other.Kind && strings.EqualFold(s.Name, other.Name)
}

// DisplayName returns the label if set, else the name.
func (s Source) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

func (s Source) String() string {
	return s.Identity()
}

// ParseSource is the inverse of Source.Identity.
func ParseSource(identity string) (Source, error) {
	kind, name, _, err := splitIdentity(identity)
	if err != nil {
		return Source{}, err
	}
	k := Kind(kind)
	if !k.Valid() {
		return Source{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return Source{Kind: k, Name: name}, nil
}

// CanonicalHop returns a style hop with its kind lowercased and its name as written.
// Unparsable input is returned trimmed.
func CanonicalHop(hop string) string {
	kind, name, hasName, err := splitIdentity(hop)
	if err != nil {
		return strings.TrimSpace(hop)
	}
	if !hasName {
		return kind
	}
	return kind + "(" + name + ")"
}

// splitIdentity splits "kind(name)" into its parts. hasName is false for a bare "kind".
func splitIdentity(s string) (kind, name string, hasName bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false, ErrInvalidIdentity
	}
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if strings.ContainsRune(s, ')') {
			return "", "", false, fmt.Errorf("%w: %q", ErrInvalidIdentity, s)
		}
		return strings.ToLower(s), "", false, nil
	}
	if open == 0 || !strings.HasSuffix(s, ")") {
		return "", "", false, fmt.Errorf("%w: %q", ErrInvalidIdentity, s)
	}
	return strings.ToLower(s[:open]), s[open+1 : len(s)-1], true, nil
}

// Character is the player who authored a message.
type Character struct {
	Name      string
	ID        *int64 // Nil when unknown
	Dimension int
}

// Valid reports whether the character can be addressed as a sender.
func (c *Character) Valid() bool {
	return c != nil && c.Name != ""
}
