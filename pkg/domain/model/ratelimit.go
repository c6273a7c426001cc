package model

// RateLimit is a snapshot of the API quota, sampled immediately before each
// per-release sync action. It is re-queried every time, never cached.
type RateLimit struct {
	Remaining int
	Limit     int
}

// Below reports whether the remaining quota has dropped under the given
// fraction of the ceiling.
func (x *RateLimit) Below(ratio float64) bool {
	return float64(x.Remaining) < ratio*float64(x.Limit)
}
