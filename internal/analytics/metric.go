package analytics

import (
	"encoding/json"
	"math"
)

// Metric is a number that may have no underlying population. It marshals as
// a rounded minute count when valid and as the string "N/A" otherwise, so a
// dashboard can never mistake "no data" for zero.
type Metric struct {
	Value float64
	Valid bool
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return json.Marshal("N/A")
	}
	return json.Marshal(int(math.Round(m.Value)))
}
