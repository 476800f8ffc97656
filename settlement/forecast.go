package settlement

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Forecast caps open-market sales per channel, in units. A channel absent
// from the map is not capped. A nil Forecast means no override at all.
type Forecast map[Channel]decimal.Decimal

// Cap returns the forecast volume for a channel and whether one was given.
func (f Forecast) Cap(c Channel) (decimal.Decimal, bool) {
	if f == nil {
		return zero, false
	}
	v, ok := f[c]
	return v, ok
}

// Channels returns the capped channels in channel order.
func (f Forecast) Channels() []Channel {
	out := make([]Channel, 0, len(f))
	for c := range f {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy.
func (f Forecast) Clone() Forecast {
	if f == nil {
		return nil
	}
	out := make(Forecast, len(f))
	for c, v := range f {
		out[c] = v
	}
	return out
}
