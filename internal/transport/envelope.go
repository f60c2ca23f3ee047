package transport

import (
	"encoding/json"
	"fmt"
)

// Frame types
const (
	FrameMessage = "message"
	FrameCommand = "command"
)

// Frame is one JSON record on a room-multiplexed socket.
type Frame struct {
	Type string  `json:"type"`
	Room string  `json:"room,omitempty"`
	Cmd  string  `json:"cmd,omitempty"`
	Body *string `json:"body,omitempty"`
}

// Envelope wraps payloads into room message frames.
type Envelope struct {
	room string
}

// NewEnvelope creates an envelope for room.
func NewEnvelope(room string) *Envelope {
	return &Envelope{room: room}
}

// Room returns the room this envelope addresses.
func (e *Envelope) Room() string {
	return e.room
}

// Name implements Stage.
func (e *Envelope) Name() string {
	return "envelope"
}

// Outbound implements Stage.
func (e *Envelope) Outbound(payload string) ([]string, error) {
	data, err := json.Marshal(Frame{Type: FrameMessage, Room: e.room, Body: &payload})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return []string{string(data)}, nil
}

// Inbound implements Stage. Frames that are not messages, carry no body or
// belong to another room are discarded.
func (e *Envelope) Inbound(frame string) (string, bool) {
	var f Frame
	if err := json.Unmarshal([]byte(frame), &f); err != nil {
		return "", false
	}
	if f.Type != FrameMessage || f.Body == nil {
		return "", false
	}
	if f.Room != "" && e.room != "" && f.Room != e.room {
		return "", false
	}
	return *f.Body, true
}

// SubscribeFrame builds the command that joins room.
func SubscribeFrame(room string) string {
	data, _ := json.Marshal(Frame{Type: FrameCommand, Cmd: "subscribe", Room: room})
	return string(data)
}
