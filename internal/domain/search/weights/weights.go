// Package weights holds the per-channel blend weights and their dynamic
// renormalization over the channels a query actually populated.
package weights

import (
	"fmt"

	"github.com/fleetscope/shipdex/internal/domain"
)

// Channel identifies one similarity computation.
type Channel string

// Recognized channels.
const (
	Numerical   Channel = "numerical"
	Categorical Channel = "categorical"
	Text        Channel = "text"
	Binary      Channel = "binary"
	Name        Channel = "name"
)

// Defaults applied to unspecified channels. An explicit name query should
// dominate, hence its higher baseline.
var defaults = map[Channel]float64{
	Numerical:   0.35,
	Categorical: 0.30,
	Text:        0.20,
	Binary:      0.15,
	Name:        0.40,
}

// Weights maps every recognized channel to a non-negative blend weight.
type Weights struct {
	values map[Channel]float64
}

// Default returns the baseline weight table.
func Default() Weights {
	values := make(map[Channel]float64, len(defaults))
	for ch, w := range defaults {
		values[ch] = w
	}
	return Weights{values: values}
}

// FromMap builds a weight table from caller-supplied overrides.
// Unrecognized keys are ignored; missing channels keep their defaults.
func FromMap(overrides map[string]float64) (Weights, error) {
	w := Default()
	for key, v := range overrides {
		ch := Channel(key)
		if _, ok := w.values[ch]; !ok {
			continue
		}
		if v < 0 {
			return Weights{}, fmt.Errorf("weight %q must be non-negative, got %v: %w", key, v, domain.ErrInvalidQuery)
		}
		w.values[ch] = v
	}
	return w, nil
}

// Get returns the weight for a channel.
func (w Weights) Get(ch Channel) float64 { return w.values[ch] }

// Renormalize rescales the weights of the active channels so they sum to
// exactly 1. Returns nil when no channel is active or all active weights
// are zero; callers treat that as an all-zero score vector.
func (w Weights) Renormalize(active []Channel) map[Channel]float64 {
	sum := 0.0
	for _, ch := range active {
		sum += w.values[ch]
	}
	if sum <= 0 {
		return nil
	}
	out := make(map[Channel]float64, len(active))
	for _, ch := range active {
		out[ch] = w.values[ch] / sum
	}
	return out
}
