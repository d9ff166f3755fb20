// Package target picks the rectangular target out of a frame's blobs.
//
// Each frame is scored against three confidence tiers. The strict tier wants a
// thin, hollow border; the relaxed tier tolerates near-solid regions; the
// fallback tier takes any blob of plausible size. The first non-empty tier
// wins. A continuity term pulls the choice toward the last accepted centroid.
package target

import (
	"encoding/json"
	"fmt"

	"github.com/ayusman/gimbaltrack/internal/blob"
)

// Point is an image-space position.
type Point = blob.Point

// Tier is the confidence level of a detection.
type Tier int

const (
	// TierNone means no blob survived the size gates.
	TierNone Tier = iota
	// TierAccepted is the strict tier: thin border, away from the edges.
	TierAccepted
	// TierRelaxed tolerates solid-looking blobs.
	TierRelaxed
	// TierFallback only passed the size gates.
	TierFallback
)

var tierNames = map[Tier]string{
	TierNone:     "none",
	TierAccepted: "accepted",
	TierRelaxed:  "relaxed",
	TierFallback: "fallback",
}

// String returns the lowercase tier name.
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// ParseTier is the inverse of Tier.String.
func ParseTier(s string) (Tier, error) {
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}
	return TierNone, fmt.Errorf("unknown tier %q", s)
}

// Valid reports whether the tier is confident enough to move the track anchor.
func (t Tier) Valid() bool {
	return t == TierAccepted || t == TierRelaxed
}

// MarshalJSON encodes the tier by name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a tier name.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
