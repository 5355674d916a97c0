// Package live streams scene and violation updates to the canvas over a
// websocket and accepts operations and renderer callbacks from it.
package live

import (
	"encoding/json"

	"github.com/planbay/planbay/internal/api"
	"github.com/planbay/planbay/internal/scene"
)

type Message struct {
	Type     string          `json:"type"`
	LayoutID string          `json:"layoutId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Server → client
	TypeSceneSync       = "scene.sync"
	TypeViolationReport = "violation.report"
	TypeOpAck           = "op.ack"
	TypeOpNack          = "op.nack"

	// Client → server
	TypeOpSubmit         = "op.submit"
	TypeObjectMoved      = "object.moved"
	TypeObjectRemoved    = "object.removed"
	TypeSelectionChanged = "selection.changed"
)

type WelcomePayload struct {
	ClientID string      `json:"clientId"`
	Scene    scene.Scene `json:"scene"`
}

type SceneSyncPayload struct {
	Scene scene.Scene `json:"scene"`
}

type ViolationPayload struct {
	Violations []string `json:"violations"`
}

type OpSubmitPayload struct {
	Operation api.Operation `json:"operation"`
}

type OpAckPayload struct {
	Result api.OpResult `json:"result"`
}

type OpNackPayload struct {
	Reason string `json:"reason"`
}

type ObjectMovedPayload struct {
	ItemID   string  `json:"itemId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	AngleDeg float64 `json:"angleDeg"`
}

type ObjectRemovedPayload struct {
	ItemID string `json:"itemId"`
}

type SelectionChangedPayload struct {
	Selection []string `json:"selection"`
}
