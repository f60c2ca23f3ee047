package codec

import (
	"regexp"
	"strings"

	"github.com/rickgao/botrelay/internal/model"
)

const v2Prefix = "grc <v2>"

var bodyColorRe = regexp.MustCompile(`(?s)^<font color=["']?#?[0-9A-Fa-f]{6}["']?>(.*)</font>$`)

// v2Codec implements "grc <v2>" with colored tags and body.
type v2Codec struct {
	styles    *Styles
	dimension int
}

// NewV2 creates the colored "grc <v2>" codec.
func NewV2(styles *Styles, dimension int) Codec {
	return &v2Codec{styles: styles, dimension: dimension}
}

func (c *v2Codec) Name() string {
	return NameV2
}

func (c *v2Codec) Render(ev model.Event) []string {
	if !renderable(ev) {
		return nil
	}

	var tags strings.Builder
	for _, h := range visibleHops(c.styles, ev) {
		tags.WriteString(colorize(c.tagColor(h), "["+h.text+"]"))
	}
	textColor := c.textColor(ev)

	var out []string
	for _, line := range lines(ev.Text) {
		var b strings.Builder
		b.WriteString(v2Prefix)
		b.WriteString(tags.String())
		if ev.Character.Valid() {
			name := ev.Character.Name
			b.WriteString(" <a href=user://" + name + ">" + name + "</a>:")
		} else {
			line = escapeBody(line, claimsPrefix(" "+colorize(textColor, line)))
		}
		b.WriteString(" ")
		b.WriteString(colorize(textColor, line))
		out = append(out, b.String())
	}
	return out
}

func (c *v2Codec) Parse(raw string) (model.Event, bool) {
	if !strings.HasPrefix(raw, v2Prefix) {
		return model.Event{}, false
	}
	p := parseBody(strings.TrimPrefix(raw, v2Prefix))
	if m := bodyColorRe.FindStringSubmatch(p.body); m != nil {
		p.body = m[1]
	}
	if p.sender == "" {
		p.body = unescapeBody(p.body)
	}
	return p.toEvent(c.styles, c.dimension), true
}

// tagColor picks the tag color: an explicit rule first, then by class.
// A private channel is the host when it is the first hop and a guest afterwards.
func (c *v2Codec) tagColor(h hop) string {
	if col, ok := c.styles.ColorFor(h.src); ok && col.TagColor != "" {
		return col.TagColor
	}
	if h.src.Kind != model.KindPriv {
		return DefaultOrgTagColor
	}
	if h.index == 0 {
		return DefaultHostTagColor
	}
	return DefaultGuestTagColor
}

// textColor uses the origin hop's text color. Messages without a valid
// author are bot-authored and always use the bot color.
func (c *v2Codec) textColor(ev model.Event) string {
	if !ev.Character.Valid() {
		return DefaultBotTextColor
	}
	origin, _ := ev.Origin()
	if col, ok := c.styles.ColorFor(origin); ok && col.TextColor != "" {
		return col.TextColor
	}
	if origin.Kind == model.KindPriv {
		return DefaultPrivTextColor
	}
	return DefaultOrgTextColor
}

func colorize(color, text string) string {
	return "<font color=#" + color + ">" + text + "</font>"
}
