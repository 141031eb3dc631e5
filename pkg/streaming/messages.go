// Package streaming defines the JSON messages a live engagement feed
// sends over WebSocket.
package streaming

import (
	"encoding/json"

	"github.com/starwake/engine/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartEngagement = "start_engagement"
	TypeEndEngagement   = "end_engagement"
	TypeShot            = "shot"
	TypeSpecial         = "special"
	TypeJam             = "jam"
	TypeHit             = "hit"
	TypeSlot            = "slot"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartEngagementPayload carries the engagement header.
type StartEngagementPayload struct {
	Engagement *core.Engagement `json:"engagement"`
}

// EndEngagementPayload carries the final tick and surviving ships per team.
type EndEngagementPayload struct {
	EndTick   uint64         `json:"endTick"`
	Survivors map[string]int `json:"survivors"`
}
