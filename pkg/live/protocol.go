package live

import (
	"encoding/json"

	"github.com/vango-dev/sigstore/internal/errors"
	"github.com/vango-dev/sigstore/pkg/host"
)

// MessageType is the type of a server message.
type MessageType string

const (
	MessageInit  MessageType = "init"
	MessagePatch MessageType = "patch"
	MessageError MessageType = "error"
)

// ClientMessage is an action sent by the browser.
type ClientMessage struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
}

// ServerMessage is sent to the browser.
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Node      string      `json:"node,omitempty"`
	Component string      `json:"component,omitempty"`
	HTML      string      `json:"html,omitempty"`
	Code      string      `json:"code,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// DecodeClientMessage parses one client frame. Malformed frames return a
// P001 error.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, errors.New("P001").Wrap(err)
	}
	if msg.Action == "" {
		return ClientMessage{}, errors.New("P001").WithDetail("missing action")
	}
	return msg, nil
}

func patchMessage(p host.Patch) ServerMessage {
	return ServerMessage{
		Type:      MessagePatch,
		Node:      p.NodeID,
		Component: p.Component,
		HTML:      p.HTML,
	}
}

func errorMessage(err error) ServerMessage {
	return ServerMessage{
		Type:  MessageError,
		Code:  errors.CodeOf(err),
		Error: err.Error(),
	}
}
