package codec

import (
	"encoding/json"

	"github.com/rickgao/botrelay/internal/model"
)

// nativeHop is the wire form of a Source.
type nativeHop struct {
	Type      string  `json:"type"`
	Name      string  `json:"name,omitempty"`
	Label     *string `json:"label,omitempty"`
	Dimension int     `json:"server,omitempty"`
}

// nativeCharacter is the wire form of a Character.
type nativeCharacter struct {
	Name      string `json:"name"`
	ID        *int64 `json:"id,omitempty"`
	Dimension int    `json:"dimension,omitempty"`
}

// nativePacket is one JSON message of the native protocol.
type nativePacket struct {
	Type      string           `json:"type"`
	Path      []nativeHop      `json:"path"`
	Character *nativeCharacter `json:"character,omitempty"`
	Message   string           `json:"message,omitempty"`
	Data      json.RawMessage  `json:"data,omitempty"`
	Silent    bool             `json:"silent,omitempty"`
}

// nativeCodec carries the complete event as JSON. It is the only format
// that transports presence changes and generic events.
type nativeCodec struct {
	dimension int
}

// NewNative creates the JSON codec.
func NewNative(dimension int) Codec {
	return &nativeCodec{dimension: dimension}
}

func (c *nativeCodec) Name() string {
	return NameNative
}

func (c *nativeCodec) Render(ev model.Event) []string {
	switch ev.Kind {
	case model.EventMessage:
		if ev.Len() == 0 {
			return nil
		}
	case model.EventUserState, model.EventGeneric:
	default:
		return nil
	}

	pkt := nativePacket{
		Type:    string(ev.Kind),
		Path:    make([]nativeHop, 0, ev.Len()),
		Message: ev.Text,
		Data:    ev.Data,
		Silent:  ev.RouteSilently,
	}
	for _, src := range ev.Path() {
		h := nativeHop{Type: string(src.Kind), Name: src.Name, Dimension: src.Dimension}
		if src.Label != "" {
			label := src.Label
			h.Label = &label
		}
		pkt.Path = append(pkt.Path, h)
	}
	if ev.Character != nil {
		pkt.Character = &nativeCharacter{
			Name:      ev.Character.Name,
			ID:        ev.Character.ID,
			Dimension: ev.Character.Dimension,
		}
	}

	data, err := json.Marshal(pkt)
	if err != nil {
		return nil
	}
	return []string{string(data)}
}

func (c *nativeCodec) Parse(raw string) (model.Event, bool) {
	var pkt nativePacket
	if err := json.Unmarshal([]byte(raw), &pkt); err != nil {
		return model.Event{}, false
	}
	kind := model.EventKind(pkt.Type)
	switch kind {
	case model.EventMessage, model.EventUserState, model.EventGeneric:
	default:
		return model.Event{}, false
	}

	path := make([]model.Source, 0, len(pkt.Path))
	for _, h := range pkt.Path {
		k := model.Kind(h.Type)
		if !k.Valid() {
			continue
		}
		src := model.Source{Kind: k, Name: h.Name, Dimension: h.Dimension}
		if h.Label != nil {
			src.Label = *h.Label
		}
		if src.Dimension == 0 {
			src.Dimension = c.dimension
		}
		path = append(path, src)
	}

	ev := model.NewEvent(kind, path)
	ev.Text = pkt.Message
	ev.Data = pkt.Data
	ev.RouteSilently = pkt.Silent
	if pkt.Character != nil {
		ev.Character = &model.Character{
			Name:      pkt.Character.Name,
			ID:        pkt.Character.ID,
			Dimension: pkt.Character.Dimension,
		}
		if ev.Character.Dimension == 0 {
			ev.Character.Dimension = c.dimension
		}
	}
	return ev, true
}
