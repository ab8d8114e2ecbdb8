package activity

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Spec is an activity record as sent by the import stream.
type Spec struct {
	ID            int64   `json:"_id"`
	Type          string  `json:"type"`
	Name          string  `json:"name,omitempty"`
	TS            int64   `json:"ts"`
	TotalDistance float64 `json:"total_distance,omitempty"`
	ElapsedTime   float64 `json:"elapsed_time,omitempty"`
	Polyline      string  `json:"polyline"`
	Time          Stream  `json:"time,omitempty"`
	PathColor     string  `json:"path_color,omitempty"`
	Selected      bool    `json:"selected,omitempty"`
}

// Run is one element of an encoded stream: Delta added N times.
type Run struct {
	Delta float64
	N     int
}

// Stream is a run-length encoded sequence of deltas. On the wire a lone
// number is a single delta and a [delta, n] pair is a repeated one.
type Stream []Run

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stream) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Stream, 0, len(raw))
	for i, el := range raw {
		switch v := el.(type) {
		case float64:
			out = append(out, Run{Delta: v, N: 1})
		case []any:
			if len(v) != 2 {
				return fmt.Errorf("activity: stream element %d: want [delta, n], got %d values", i, len(v))
			}
			d, ok1 := v[0].(float64)
			n, ok2 := v[1].(float64)
			if !ok1 || !ok2 || n < 0 || n != float64(int(n)) {
				return fmt.Errorf("activity: stream element %d: malformed run %v", i, v)
			}
			out = append(out, Run{Delta: d, N: int(n)})
		default:
			return fmt.Errorf("activity: stream element %d: unexpected %T", i, el)
		}
	}
	*s = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Stream) MarshalJSON() ([]byte, error) {
	raw := make([]any, len(s))
	for i, r := range s {
		if r.N == 1 {
			raw[i] = r.Delta
		} else {
			raw[i] = []any{r.Delta, r.N}
		}
	}
	return json.Marshal(raw)
}

// Len returns the number of values the stream decodes to, first included.
func (s Stream) Len() int {
	n := 1
	for _, r := range s {
		n += r.N
	}
	return n
}

// DecodeTimeStream expands s into absolute values starting at first.
func DecodeTimeStream(s Stream, first float64) []float64 {
	out := make([]float64, 1, s.Len())
	out[0] = first
	sum := first
	for _, r := range s {
		for range r.N {
			sum += r.Delta
			out = append(out, sum)
		}
	}
	return out
}

// EncodeTimeStream is the inverse of DecodeTimeStream (the first value is
// not stored). Runs of more than two equal deltas become a single Run.
func EncodeTimeStream(vals []float64) Stream {
	var out Stream
	for i := 1; i < len(vals); {
		d := vals[i] - vals[i-1]
		j := i + 1
		for j < len(vals) && vals[j]-vals[j-1] == d {
			j++
		}
		if n := j - i; n > 2 {
			out = append(out, Run{Delta: d, N: n})
		} else {
			for range n {
				out = append(out, Run{Delta: d, N: 1})
			}
		}
		i = j
	}
	return out
}
