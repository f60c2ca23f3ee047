package codec

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rickgao/botrelay/internal/model"
)

// Default colors used when no HopColor matches.
const (
	DefaultOrgTagColor   = "5EF1FF"
	DefaultHostTagColor  = "FFCC00"
	DefaultGuestTagColor = "C3C3C3"
	DefaultOrgTextColor  = "89D2E8"
	DefaultPrivTextColor = "FFFFFF"
	DefaultBotTextColor  = "DEDE42"
)

// Styles holds the hop format and hop color tables.
// Reads vastly outnumber writes; all methods are safe for concurrent use.
type Styles struct {
	mu      sync.RWMutex
	formats map[string]model.HopFormat // key: lowercased hop
	colors  map[string]model.HopColor
}

// NewStyles creates empty tables.
func NewStyles() *Styles {
	return &Styles{
		formats: make(map[string]model.HopFormat),
		colors:  make(map[string]model.HopColor),
	}
}

// DefaultStyles hides relay and system hops. Org hops render by name; every
// other kind carries a marker so parsers can recover it from the tag.
func DefaultStyles() *Styles {
	s := NewStyles()
	for _, f := range defaultFormats {
		s.formats[styleKey(f.Hop)] = f
	}
	return s
}

var defaultFormats = []model.HopFormat{
	{Hop: string(model.KindOrg), Render: true, Format: "%s"},
	{Hop: string(model.KindPriv), Render: true, Format: "Guest %s"},
	{Hop: string(model.KindTell), Render: true, Format: "Tell %s"},
	{Hop: string(model.KindWeb), Render: true, Format: "Web %s"},
	{Hop: string(model.KindDiscordPriv), Render: true, Format: "Discord %s"},
	{Hop: string(model.KindDiscordMsg), Render: true, Format: "DM %s"},
	{Hop: string(model.KindTradebot), Render: true, Format: "Trade %s"},
	{Hop: string(model.KindIrc), Render: true, Format: "IRC %s"},
	{Hop: string(model.KindLog), Render: true, Format: "Log %s"},
	{Hop: string(model.KindConsole), Render: true, Format: "Console %s"},
	{Hop: string(model.KindSystem), Render: false},
	{Hop: string(model.KindRelay), Render: false},
}

func styleKey(hop string) string {
	return strings.ToLower(model.CanonicalHop(hop))
}

// SetFormat validates and stores a format, replacing any rule for the same hop.
func (s *Styles) SetFormat(f model.HopFormat) error {
	if err := f.Validate(); err != nil {
		return err
	}
	f.Hop = model.CanonicalHop(f.Hop)
	s.mu.Lock()
	s.formats[styleKey(f.Hop)] = f
	s.mu.Unlock()
	return nil
}

// RemoveFormat deletes the rule for hop. Returns false if none existed.
func (s *Styles) RemoveFormat(hop string) bool {
	key := styleKey(hop)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.formats[key]; !ok {
		return false
	}
	delete(s.formats, key)
	return true
}

// Formats returns all rules sorted by hop.
func (s *Styles) Formats() []model.HopFormat {
	s.mu.RLock()
	out := make([]model.HopFormat, 0, len(s.formats))
	for _, f := range s.formats {
		out = append(out, f)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Hop < out[j].Hop })
	return out
}

// FormatFor returns the rule for src; exact kind(name) rules win over kind rules.
func (s *Styles) FormatFor(src model.Source) (model.HopFormat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if src.Name != "" {
		if f, ok := s.formats[strings.ToLower(src.Identity())]; ok {
			return f, true
		}
	}
	f, ok := s.formats[string(src.Kind)]
	return f, ok
}

// HopText returns the visible text for src, or false when the hop is hidden.
func (s *Styles) HopText(src model.Source) (string, bool) {
	f, ok := s.FormatFor(src)
	if !ok {
		name := src.DisplayName()
		return name, name != ""
	}
	if !f.Render {
		return "", false
	}
	text := f.Apply(src)
	return text, text != ""
}

// SetColor validates and stores a color pair.
func (s *Styles) SetColor(c model.HopColor) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.TagColor = strings.ToUpper(c.TagColor)
	c.TextColor = strings.ToUpper(c.TextColor)
	c.Hop = model.CanonicalHop(c.Hop)
	s.mu.Lock()
	s.colors[styleKey(c.Hop)] = c
	s.mu.Unlock()
	return nil
}

// RemoveColor deletes the color pair for hop.
func (s *Styles) RemoveColor(hop string) bool {
	key := styleKey(hop)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.colors[key]; !ok {
		return false
	}
	delete(s.colors, key)
	return true
}

// Colors returns all color pairs sorted by hop.
func (s *Styles) Colors() []model.HopColor {
	s.mu.RLock()
	out := make([]model.HopColor, 0, len(s.colors))
	for _, c := range s.colors {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Hop < out[j].Hop })
	return out
}

// ColorFor returns the color pair for src, exact rules first.
func (s *Styles) ColorFor(src model.Source) (model.HopColor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if src.Name != "" {
		if c, ok := s.colors[strings.ToLower(src.Identity())]; ok {
			return c, true
		}
	}
	c, ok := s.colors[string(src.Kind)]
	return c, ok
}

// Resolve maps a rendered hop token back to a Source.
//
// Exact rules are tried first, then kind rules whose format can be reversed
// unambiguously. A token no rule claims is an org hop named by the token.
func (s *Styles) Resolve(token string) model.Source {
	s.mu.RLock()
	formats := make([]model.HopFormat, 0, len(s.formats))
	for _, f := range s.formats {
		if f.Render {
			formats = append(formats, f)
		}
	}
	s.mu.RUnlock()
	sort.Slice(formats, func(i, j int) bool { return formats[i].Hop < formats[j].Hop })

	for _, f := range formats {
		if !model.IsExactPattern(f.Hop) {
			continue
		}
		src, err := model.ParseSource(f.Hop)
		if err != nil {
			continue
		}
		if f.Apply(src) == token {
			return src
		}
	}

	for _, f := range formats {
		if model.IsExactPattern(f.Hop) {
			continue
		}
		kind := model.PatternKind(f.Hop)
		if text := f.Apply(model.Source{Kind: kind}); text != "" && text == token {
			return model.Source{Kind: kind}
		}
		if !strings.Contains(f.Format, "%s") {
			continue
		}
		re := reverseFormat(f.Format)
		if re == nil {
			continue
		}
		if m := re.FindStringSubmatch(token); m != nil && m[1] != "" {
			return model.Source{Kind: kind, Name: m[1]}
		}
	}

	return model.Source{Kind: model.KindOrg, Name: token}
}

// reverseFormat turns "Discord %s" into ^Discord (.+)$. A bare "%s" is
// ambiguous between kinds and yields nil.
func reverseFormat(format string) *regexp.Regexp {
	format = strings.ReplaceAll(format, "%%", "%")
	i := strings.Index(format, "%s")
	prefix, suffix := format[:i], format[i+2:]
	if prefix == "" && suffix == "" {
		return nil
	}
	return regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + "(.+)" + regexp.QuoteMeta(suffix) + "$")
}
