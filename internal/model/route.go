package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Errors
var (
	ErrInvalidFormat = errors.New("invalid hop format")
	ErrInvalidColor  = errors.New("invalid hop color")
)

// Route states which source hops may deliver to which destination hops.
type Route struct {
	ID          string
	Source      string // Hop pattern, e.g. "aopriv(*)"
	Destination string // Hop pattern, e.g. "aoorg"
	TwoWay      bool
	Filter      string // Optional boolean expression, empty = always
}

// NewRoute creates a route with a fresh id.
func NewRoute(source, destination string, twoWay bool) Route {
	return Route{
		ID:          uuid.NewString(),
		Source:      source,
		Destination: destination,
		TwoWay:      twoWay,
	}
}

// Validate checks both patterns.
func (r Route) Validate() error {
	if err := ValidatePattern(r.Source); err != nil {
		return fmt.Errorf("route source: %w", err)
	}
	if err := ValidatePattern(r.Destination); err != nil {
		return fmt.Errorf("route destination: %w", err)
	}
	return nil
}

// Equal compares routes ignoring the id.
func (r Route) Equal(other Route) bool {
	return strings.EqualFold(r.Source, other.Source) &&
		strings.EqualFold(r.Destination, other.Destination) &&
		r.TwoWay == other.TwoWay &&
		r.Filter == other.Filter
}

func (r Route) String() string {
	arrow := " -> "
	if r.TwoWay {
		arrow = " <-> "
	}
	s := r.Source + arrow + r.Destination
	if r.Filter != "" {
		s += " if " + r.Filter
	}
	return s
}

// HopFormat is a rendering rule for hops matching Hop.
type HopFormat struct {
	Hop    string // "kind" or exact "kind(name)"
	Render bool   // False hides the hop from rendered paths
	Format string // At most one %s, replaced by the hop's label or name
}

// Validate checks the hop and the placeholder count.
func (f HopFormat) Validate() error {
	if err := validateStyleHop(f.Hop); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if strings.Count(f.Format, "%s") > 1 {
		return fmt.Errorf("%w: more than one %%s in %q", ErrInvalidFormat, f.Format)
	}
	if strings.Count(f.Format, "%")-strings.Count(f.Format, "%%")*2 != strings.Count(f.Format, "%s") {
		return fmt.Errorf("%w: unsupported verb in %q", ErrInvalidFormat, f.Format)
	}
	return nil
}

// Apply renders the visible text for a hop. An unnamed hop renders the
// format without its placeholder, trimmed.
func (f HopFormat) Apply(s Source) string {
	if f.Format == "" {
		return s.DisplayName()
	}
	if strings.Contains(f.Format, "%s") {
		name := s.DisplayName()
		if name == "" {
			return strings.TrimSpace(fmt.Sprintf(f.Format, ""))
		}
		return fmt.Sprintf(f.Format, name)
	}
	return strings.ReplaceAll(f.Format, "%%", "%")
}

var colorRe = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// HopColor is the color pair used by colorized wire formats.
type HopColor struct {
	Hop       string // "kind" or exact "kind(name)"
	TagColor  string // 6 hex digits, empty = default
	TextColor string // 6 hex digits, empty = default
}

// Validate checks the hop and both colors.
func (c HopColor) Validate() error {
	if err := validateStyleHop(c.Hop); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	for _, col := range []string{c.TagColor, c.TextColor} {
		if col != "" && !colorRe.MatchString(col) {
			return fmt.Errorf("%w: %q is not a hex color", ErrInvalidColor, col)
		}
	}
	return nil
}

// validateStyleHop accepts a known kind or an exact kind(name).
func validateStyleHop(hop string) error {
	kind, _, hasName, err := splitIdentity(hop)
	if err != nil {
		return err
	}
	if !Kind(kind).Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if hasName && !IsExactPattern(hop) {
		return fmt.Errorf("%w: %q must be a kind or kind(name)", ErrInvalidPattern, hop)
	}
	return nil
}
