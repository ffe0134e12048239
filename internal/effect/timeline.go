package effect

import (
	"fmt"
	"sort"
)

// Timeline is an ordered, immutable collection of effects plus a total
// duration, representing one playable scene.
//
// Build one with NewTimeline, hand it to the playback scheduler via Load,
// and do not mutate it afterwards; replacing a running scene requires a
// fresh Load.
type Timeline struct {
	// Effects sorted by ascending timestamp (stable).
	Effects []Effect `json:"effects"`

	// TotalDuration is max(timestamp + duration) over all effects, in ms.
	TotalDuration int64 `json:"total_duration"`

	// Metadata carries scene-level annotations (title, author, source).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewTimeline validates every effect, sorts them by timestamp (stable order
// for equal timestamps) and computes the total duration.
//
// The input slice is not retained; effects are deep-copied so later caller
// mutations cannot reach the timeline.
func NewTimeline(effects []Effect, metadata map[string]string) (*Timeline, error) {
	if len(effects) == 0 {
		return nil, ErrEmptyTimeline
	}

	sorted := make([]Effect, len(effects))
	for i := range effects {
		cpy := effects[i].DeepCopy()
		if err := cpy.Validate(); err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		sorted[i] = cpy
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	var total int64
	for i := range sorted {
		if end := sorted[i].End(); end > total {
			total = end
		}
	}

	var meta map[string]string
	if metadata != nil {
		meta = make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}

	return &Timeline{
		Effects:       sorted,
		TotalDuration: total,
		Metadata:      meta,
	}, nil
}

// Len returns the number of effects in the timeline.
func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Effects)
}
