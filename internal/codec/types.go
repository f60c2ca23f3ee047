package codec

import (
	"errors"
	"fmt"

	"github.com/rickgao/botrelay/internal/model"
)

// Errors
var (
	ErrUnknownCodec = errors.New("unknown codec")
)

// Codec names used in configuration.
const (
	NameLegacy = "gcr"
	NameV1     = "grc"
	NameV2     = "grcv2"
	NameNative = "native"
)

// Codec converts events to and from one wire format.
type Codec interface {
	// Name returns the configuration name of the format.
	Name() string

	// Render returns the wire messages for an event. Events the format
	// cannot express yield an empty list.
	Render(ev model.Event) []string

	// Parse decodes one wire message. It returns false only when the text
	// does not belong to this format.
	Parse(raw string) (model.Event, bool)
}

// Names lists the supported codec names.
func Names() []string {
	return []string{NameLegacy, NameV1, NameV2, NameNative}
}

// New creates a codec by name. Parsed characters are assigned dimension.
func New(name string, styles *Styles, dimension int) (Codec, error) {
	if styles == nil {
		styles = DefaultStyles()
	}
	switch name {
	case NameLegacy:
		return NewLegacy(styles, dimension), nil
	case NameV1:
		return NewV1(styles, dimension), nil
	case NameV2:
		return NewV2(styles, dimension), nil
	case NameNative:
		return NewNative(dimension), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}
