package codec

import (
	"regexp"
	"strings"

	"github.com/rickgao/botrelay/internal/model"
)

var (
	hopTokenRe   = regexp.MustCompile(`^\s*(?:<font color=["']?#?[0-9A-Fa-f]{6}["']?>\[([^\[\]]*)\]</font>|\[([^\[\]]*)\])`)
	senderLinkRe = regexp.MustCompile(`^\s*<a href=["']?user://([^"'>\s]+)["']?>[^<]*</a>:(?:\s|$)`)
	senderBareRe = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9-]{0,31}):(?:\s|$)`)
)

// bodyEscape precedes a sender-less body that starts like a hop tag or a sender.
const bodyEscape = `\`

// hop is one visible hop of a rendered path.
type hop struct {
	src   model.Source
	text  string
	index int // Position in the full path, hidden hops included
}

// visibleHops returns the hops that render, in path order.
func visibleHops(styles *Styles, ev model.Event) []hop {
	hops := make([]hop, 0, ev.Len())
	for i := 0; i < ev.Len(); i++ {
		src := ev.Hop(i)
		text, ok := styles.HopText(src)
		if !ok {
			continue
		}
		hops = append(hops, hop{src: src, text: text, index: i})
	}
	return hops
}

// renderable reports whether a text format can express ev.
func renderable(ev model.Event) bool {
	return ev.Kind == model.EventMessage && ev.Len() > 0
}

// lines splits a multi-line payload; one wire message is sent per line.
func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		out = append(out, "")
	}
	return out
}

// parsed is the structural decomposition of a wire line.
type parsed struct {
	tokens []string
	sender string
	body   string
}

// parseBody strips hop tokens, then an optional sender; the rest is the body.
// Without a sender only the single separating space is dropped.
func parseBody(rest string) parsed {
	var p parsed
	for {
		m := hopTokenRe.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		if m[2] >= 0 {
			p.tokens = append(p.tokens, rest[m[2]:m[3]])
		} else {
			p.tokens = append(p.tokens, rest[m[4]:m[5]])
		}
		rest = rest[m[1]:]
	}
	if m := senderLinkRe.FindStringSubmatchIndex(rest); m != nil {
		p.sender = rest[m[2]:m[3]]
		rest = rest[m[1]:]
	} else if m := senderBareRe.FindStringSubmatchIndex(rest); m != nil {
		p.sender = rest[m[2]:m[3]]
		rest = rest[m[1]:]
	} else {
		rest = strings.TrimPrefix(rest, " ")
	}
	p.body = rest
	return p
}

// claimsPrefix reports whether parseBody would read a hop or a sender from
// the start of rest.
func claimsPrefix(rest string) bool {
	return hopTokenRe.MatchString(rest) || senderLinkRe.MatchString(rest) || senderBareRe.MatchString(rest)
}

// escapeBody marks a sender-less line that would otherwise parse as a hop or
// a sender. Lines already starting with the marker are marked too.
func escapeBody(line string, ambiguous bool) string {
	if ambiguous || strings.HasPrefix(line, bodyEscape) {
		return bodyEscape + line
	}
	return line
}

func unescapeBody(body string) string {
	return strings.TrimPrefix(body, bodyEscape)
}

// toEvent resolves parsed tokens against styles.
func (p parsed) toEvent(styles *Styles, dimension int) model.Event {
	path := make([]model.Source, 0, len(p.tokens))
	for _, tok := range p.tokens {
		src := styles.Resolve(tok)
		src.Dimension = dimension
		path = append(path, src)
	}
	ev := model.NewEvent(model.EventMessage, path)
	ev.Text = p.body
	if p.sender != "" {
		ev.Character = &model.Character{Name: p.sender, Dimension: dimension}
	}
	return ev
}

// plainCodec implements the uncolored "prefix [Hop][Hop] Sender: text" family.
type plainCodec struct {
	name      string
	prefix    string
	styles    *Styles
	dimension int
}

// NewLegacy creates the legacy "gcr" codec.
func NewLegacy(styles *Styles, dimension int) Codec {
	return &plainCodec{name: NameLegacy, prefix: "gcr", styles: styles, dimension: dimension}
}

// NewV1 creates the "grc" v1 codec.
func NewV1(styles *Styles, dimension int) Codec {
	return &plainCodec{name: NameV1, prefix: "grc", styles: styles, dimension: dimension}
}

func (c *plainCodec) Name() string {
	return c.name
}

func (c *plainCodec) Render(ev model.Event) []string {
	if !renderable(ev) {
		return nil
	}

	var tags strings.Builder
	for _, h := range visibleHops(c.styles, ev) {
		tags.WriteString("[" + h.text + "]")
	}

	var out []string
	for _, line := range lines(ev.Text) {
		parts := []string{c.prefix}
		if tags.Len() > 0 {
			parts = append(parts, tags.String())
		}
		if ev.Character.Valid() {
			parts = append(parts, ev.Character.Name+":")
		} else {
			line = escapeBody(line, claimsPrefix(" "+line))
		}
		if line != "" {
			parts = append(parts, line)
		}
		out = append(out, strings.Join(parts, " "))
	}
	return out
}

func (c *plainCodec) Parse(raw string) (model.Event, bool) {
	if raw != c.prefix && !strings.HasPrefix(raw, c.prefix+" ") {
		return model.Event{}, false
	}
	rest := strings.TrimPrefix(raw, c.prefix)
	if c.name == NameV1 && strings.HasPrefix(rest, " <v2>") {
		return model.Event{}, false
	}
	p := parseBody(rest)
	if p.sender == "" {
		p.body = unescapeBody(p.body)
	}
	return p.toEvent(c.styles, c.dimension), true
}
