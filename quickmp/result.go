package quickmp

import (
	"encoding/json"
)

// Result is the wire-level outcome of a matrix profile join: the profile
// itself plus enough metadata for a consumer to know what it is looking
// at without re-deriving it from the request that produced it.
type Result struct {
	Profile    []float64
	WindowSize int
	Normalized bool
	StreamID   int
}

// MarshalJSON gives Result a stable, lower-camel-case wire shape
// independent of the Go field names, the way the teacher's RowPair and
// CorrjoinResult types do for their own JSON encodings.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Profile    []float64 `json:"profile"`
		WindowSize int       `json:"windowSize"`
		Normalized bool      `json:"normalized"`
		StreamID   int       `json:"streamId"`
	}{
		Profile:    r.Profile,
		WindowSize: r.WindowSize,
		Normalized: r.Normalized,
		StreamID:   r.StreamID,
	})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	res := &struct {
		Profile    []float64 `json:"profile"`
		WindowSize int       `json:"windowSize"`
		Normalized bool      `json:"normalized"`
		StreamID   int       `json:"streamId"`
	}{}
	if err := json.Unmarshal(data, res); err != nil {
		return err
	}
	r.Profile = res.Profile
	r.WindowSize = res.WindowSize
	r.Normalized = res.Normalized
	r.StreamID = res.StreamID
	return nil
}
