package websocket

import (
	"encoding/json"

	"github.com/hexblast/hexblast-backend/internal/entity"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PlayerInfo identifies the acting player in a request payload.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Payload is the request/response body shared by all actions; unused
// fields stay empty on the wire.
type Payload struct {
	Player    *PlayerInfo `json:"player,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	X         *int        `json:"x,omitempty"`
	Y         *int        `json:"y,omitempty"`

	User    *entity.User       `json:"user,omitempty"`
	Session *entity.Session    `json:"session,omitempty"`
	Result  *entity.MoveResult `json:"result,omitempty"`
	Queued  bool               `json:"queued,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool   // last frame of the message
	opCode  byte   // data type (text, binary, close, ...)
	length  uint64 // payload length
	payload []byte // frame payload
}
