package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"

	"github.com/gogpu/dotlayer"
	"github.com/gogpu/dotlayer/activity"
)

type recordingSink struct {
	added   []int64
	removed []int64
	reject  map[int64]bool
}

func (s *recordingSink) Add(spec activity.Spec) error {
	if s.reject[spec.ID] {
		return fmt.Errorf("rejected %d", spec.ID)
	}
	s.added = append(s.added, spec.ID)
	return nil
}

func (s *recordingSink) Remove(id int64) bool {
	for _, a := range s.added {
		if a == id {
			s.removed = append(s.removed, id)
			return true
		}
	}
	return false
}

var track = string(polyline.EncodeCoords([][]float64{{47.60, -122.33}, {47.61, -122.32}, {47.62, -122.30}}))

func record(id int, typ string) string {
	if typ == "" {
		return fmt.Sprintf(`{"_id": %d, "polyline": %q}`, id, track)
	}
	return fmt.Sprintf(`{"_id": %d, "type": %q, "polyline": %q, "time": [[10, 2]]}`, id, typ, track)
}

func stream(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n"))
}

func TestRun(t *testing.T) {
	sink := &recordingSink{}
	sum, err := Run(context.Background(), stream(
		`{"msg": "Retrieving activity data..."}`,
		`{"count": 3}`,
		`{"idx": 0}`,
		record(1, "Run"),
		record(2, ""),
		record(3, "Ride"),
		`{"delete": [1, 42]}`,
		`{"done": true}`,
		record(4, "Run"),
	), sink)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3}, sink.added)
	assert.Equal(t, []int64{1}, sink.removed)
	assert.Equal(t, Summary{
		Added:    2,
		Deleted:  1,
		Skipped:  1,
		Expected: 3,
		Messages: []string{"Retrieving activity data..."},
		Done:     true,
	}, sum)
}

func TestRunCountsRejectedRecords(t *testing.T) {
	sink := &recordingSink{reject: map[int64]bool{2: true}}
	sum, err := Run(context.Background(), stream(record(1, "Run"), record(2, "Run")), sink)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Added)
	assert.Equal(t, 1, sum.Failed)
	assert.False(t, sum.Done, "EOF without done")
}

func TestRunProgress(t *testing.T) {
	var lines []string
	lines = append(lines, `{"count": 12}`)
	for i := range 12 {
		lines = append(lines, record(i+1, "Run"))
	}

	var got []Progress
	_, err := Run(context.Background(), stream(lines...), &recordingSink{},
		WithProgress(func(p Progress) { got = append(got, p) }))
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, 5, got[0].Imported)
	assert.Equal(t, 10, got[1].Imported)
	assert.Equal(t, 12, got[2].Imported)
	assert.InDelta(t, 1.0, got[2].Fraction(), 1e-9)
	assert.Equal(t, -1.0, Progress{Imported: 3}.Fraction())
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not an object", `[1, 2]`, ErrMalformed},
		{"bad record field", `{"_id": 1, "type": "Run", "polyline": 7}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), strings.NewReader(tt.input), &recordingSink{})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Run(context.Background(), strings.NewReader(`{"count": `), &recordingSink{})
	assert.Error(t, err, "truncated stream")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, stream(record(1, "Run")), &recordingSink{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunIntoLayer(t *testing.T) {
	l, err := dotlayer.New(dotlayer.DefaultParams())
	require.NoError(t, err)

	sum, err := Run(context.Background(), stream(record(1, "Run"), record(2, "Hike"), record(1, "Ride")), l)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Added)
	assert.Zero(t, sum.Failed)

	require.NoError(t, l.Reset(context.Background()))
	assert.Equal(t, 2, l.Len())
	resent, ok := l.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Ride", resent.Type, "a re-sent record replaces the first")
	a, ok := l.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Hike", a.Type)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 20.0, a.Duration())
}
