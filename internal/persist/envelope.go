package persist

import (
	"time"

	"github.com/planbay/planbay/internal/scene"
)

// EnvelopeVersion tags the serialized format. A snapshot written by an
// incompatible build is treated as absent, never as an error.
const EnvelopeVersion = "planbay/1"

// Envelope wraps a persisted scene with the format version and write time.
// Render handles are transient and never make it into the state field.
type Envelope struct {
	Version   string      `json:"version"`
	Timestamp string      `json:"timestamp"`
	State     scene.Scene `json:"state"`
}

func NewEnvelope(state scene.Scene) Envelope {
	return Envelope{
		Version:   EnvelopeVersion,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		State:     state.Clone(),
	}
}

// Usable reports whether a loaded envelope should be restored. Version
// mismatches and snapshots older than the retention window are skipped; a
// retention of zero or less disables the age check.
func (e Envelope) Usable(retention time.Duration, now time.Time) bool {
	if e.Version != EnvelopeVersion {
		return false
	}
	if retention <= 0 {
		return true
	}
	written, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return false
	}
	return now.Sub(written) <= retention
}
