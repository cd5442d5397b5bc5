package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/splashsync/connector/internal/token"
)

// Message types exchanged with feed clients
const (
	TypeCommits = "commits"
	TypeInspect = "inspect"
	TypeResult  = "result"
	TypeError   = "error"
)

// Message is the envelope of every frame
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func newMessage(typ string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", typ, err)
	}
	return json.Marshal(Message{Type: typ, Data: data})
}

type inspectRequest struct {
	Token *string `json:"token"`
}

type inspectResult struct {
	OK            bool                 `json:"ok"`
	Decomposition *token.Decomposition `json:"decomposition,omitempty"`
}

// handleMessage answers a client frame. Only inspect requests are served.
func handleMessage(raw []byte) []byte {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errorFrame("malformed message")
	}

	switch msg.Type {
	case TypeInspect:
		var req inspectRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return errorFrame("malformed inspect request")
		}
		res := inspectResult{}
		if d, ok := token.ParseOf(req.Token); ok {
			res.OK = true
			res.Decomposition = &d
		}
		out, err := newMessage(TypeResult, res)
		if err != nil {
			return errorFrame(err.Error())
		}
		return out
	default:
		return errorFrame(fmt.Sprintf("unsupported message type %q", msg.Type))
	}
}

func errorFrame(text string) []byte {
	out, _ := newMessage(TypeError, map[string]string{"message": text})
	return out
}
