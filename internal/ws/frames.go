package ws

import (
	"encoding/json"
	"errors"

	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/value"
)

const (
	FrameResponse = "response"
	FrameEvent    = "event"
)

var (
	ErrBadFrame  = errors.New("ws: malformed request frame")
	ErrNoCommand = errors.New("command is required")
)

// RequestFrame is sent by the application to run a command.
type RequestFrame struct {
	ID      string      `json:"id"`
	Command string      `json:"command"`
	Args    value.Value `json:"args"`
}

// ResponseFrame settles the request with the same id.
type ResponseFrame struct {
	Type  string       `json:"type"`
	ID    string       `json:"id"`
	OK    bool         `json:"ok"`
	Data  *value.Value `json:"data,omitempty"`
	Error string       `json:"error,omitempty"`
}

type EventFrame struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel"`
	Data    value.Value `json:"data"`
}

func ParseRequest(raw []byte) (RequestFrame, error) {
	var req RequestFrame
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, errors.Join(ErrBadFrame, err)
	}
	if req.Command == "" {
		return req, errors.Join(ErrBadFrame, ErrNoCommand)
	}
	return req, nil
}

// RejectFrame answers a request ParseRequest refused. It reports false
// when raw carries no id the client could match the answer to.
func RejectFrame(raw []byte, err error) (ResponseFrame, bool) {
	var head struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(raw, &head) != nil || head.ID == "" {
		return ResponseFrame{}, false
	}
	reason := "malformed request frame"
	if errors.Is(err, ErrNoCommand) {
		reason = ErrNoCommand.Error()
	}
	return ResponseFrame{Type: FrameResponse, ID: head.ID, Error: reason}, true
}

func NewResponse(id string, o call.Outcome) ResponseFrame {
	if o.Rejected {
		return ResponseFrame{Type: FrameResponse, ID: id, Error: o.Reason}
	}
	payload := o.Payload
	return ResponseFrame{Type: FrameResponse, ID: id, OK: true, Data: &payload}
}
