package activity

import (
	"errors"
	"image/color"
	"math"
	"slices"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gogpu/dotlayer/geom"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/twpayne/go-polyline"
)

// line returns n points along y=0 from x=0, one pixel and one second apart.
func line(t *testing.T, n int) *Activity {
	t.Helper()
	pts := make([]geom.Point, n)
	ts := make([]float64, n)
	for i := range pts {
		pts[i] = geom.Pt(float64(i), 0)
		ts[i] = float64(i)
	}
	a, err := NewTrack(1, pts, ts)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestDecodeTimeStream(t *testing.T) {
	tests := []struct {
		name  string
		s     Stream
		first float64
		want  []float64
	}{
		{"empty", nil, 0, []float64{0}},
		{"singles", Stream{{1, 1}, {2, 1}}, 0, []float64{0, 1, 3}},
		{"run", Stream{{0, 1}, {1, 3}, {5, 1}}, 0, []float64{0, 0, 1, 2, 3, 8}},
		{"offset", Stream{{2, 2}}, 10, []float64{10, 12, 14}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeTimeStream(tt.s, tt.first)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeTimeStream() mismatch (-want +got):\n%s", diff)
			}
			if tt.s.Len() != len(got) {
				t.Errorf("Len() = %d, decoded %d", tt.s.Len(), len(got))
			}
		})
	}
}

func TestEncodeTimeStreamInverts(t *testing.T) {
	// a typical recording: 1 s samples with a pause and a 5 s gap
	vals := []float64{0, 1, 2, 3, 4, 5, 6, 9, 10, 11, 16, 17, 18, 19, 20, 21, 22}
	enc := EncodeTimeStream(vals)
	if diff := cmp.Diff(vals, DecodeTimeStream(enc, 0)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	want := Stream{{1, 6}, {3, 1}, {1, 1}, {1, 1}, {5, 1}, {1, 6}}
	if diff := cmp.Diff(want, enc); diff != "" {
		t.Errorf("EncodeTimeStream() mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamJSON(t *testing.T) {
	var s Stream
	if err := json.Unmarshal([]byte(`[1,[2,3],4]`), &s); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Stream{{1, 1}, {2, 3}, {4, 1}}, s); diff != "" {
		t.Errorf("unmarshal mismatch (-want +got):\n%s", diff)
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `[1,[2,3],4]` {
		t.Errorf("Marshal = %s", b)
	}

	for _, bad := range []string{`[[1]]`, `[[1,2,3]]`, `["x"]`, `[[1,-2]]`, `[[1,2.5]]`, `{}`} {
		if err := json.Unmarshal([]byte(bad), &s); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", bad)
		}
	}
}

func TestProject(t *testing.T) {
	p := Project(0, 0)
	if math.Abs(p.X-128) > 1e-9 || math.Abs(p.Y-128) > 1e-9 {
		t.Errorf("Project(0,0) = %v, want (128,128)", p)
	}
	if p := Project(MaxLatitude, -180); math.Abs(p.X) > 1e-9 || math.Abs(p.Y) > 1e-6 {
		t.Errorf("Project(max,-180) = %v, want (0,0)", p)
	}
	if Project(89, 0).Y != Project(MaxLatitude, 0).Y {
		t.Error("latitude not clamped")
	}
	lat, lng := Unproject(Project(37.77, -122.42))
	if math.Abs(lat-37.77) > 1e-9 || math.Abs(lng+122.42) > 1e-9 {
		t.Errorf("Unproject round trip = (%v,%v)", lat, lng)
	}
}

func TestNew(t *testing.T) {
	coords := [][]float64{{37.7, -122.5}, {37.71, -122.49}, {37.72, -122.47}}
	spec := Spec{
		ID:          42,
		Type:        "Ride",
		Name:        "morning",
		TS:          1_600_000_000,
		ElapsedTime: 20,
		Polyline:    string(polyline.EncodeCoords(coords)),
		Time:        Stream{{10, 2}},
		PathColor:   "#ff8000",
	}
	a, err := New(spec)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != 42 || a.Type != "Ride" || a.Len() != 3 {
		t.Errorf("got id=%d type=%q len=%d", a.ID, a.Type, a.Len())
	}
	if a.Duration() != 20 || a.Time(1) != 10 {
		t.Errorf("times: duration=%v t1=%v", a.Duration(), a.Time(1))
	}
	if a.Colors.Path != (color.RGBA{R: 0xff, G: 0x80, A: 0xff}) {
		t.Errorf("path color = %v", a.Colors.Path)
	}
	if a.Start.Unix() != spec.TS {
		t.Errorf("start = %v", a.Start)
	}

	b := a.PxBounds()
	for i := range a.Len() {
		p := a.Point(i)
		if p.X < b.Min.X || p.X > b.Max.X || p.Y < b.Min.Y || p.Y > b.Max.Y {
			t.Errorf("point %d %v outside bounds %v", i, p, b)
		}
	}
	want := Project(37.7, -122.5)
	if math.Abs(a.Point(0).X-want.X) > 1e-4 {
		t.Errorf("first point %v, want about %v", a.Point(0), want)
	}
}

func TestNewWithoutTimeStream(t *testing.T) {
	coords := [][]float64{{1, 1}, {1.1, 1}, {1.2, 1}, {1.3, 1}, {1.4, 1}}
	a, err := New(Spec{ID: 1, Polyline: string(polyline.EncodeCoords(coords)), ElapsedTime: 8})
	if err != nil {
		t.Fatal(err)
	}
	if got := []float64{a.Time(0), a.Time(1), a.Time(4)}; !cmp.Equal(got, []float64{0, 2, 8}) {
		t.Errorf("even times = %v", got)
	}
}

func TestNewErrors(t *testing.T) {
	two := string(polyline.EncodeCoords([][]float64{{1, 1}, {2, 2}}))
	one := string(polyline.EncodeCoords([][]float64{{1, 1}}))
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"one point", Spec{Polyline: one}, ErrTooFewPoints},
		{"time mismatch", Spec{Polyline: two, Time: Stream{{1, 3}}}, ErrTimeMismatch},
		{"bad color", Spec{Polyline: two, PathColor: "#12"}, ErrBadColor},
		{"bad polyline", Spec{Polyline: "\x01"}, ErrBadPolyline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.spec)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#fff", color.RGBA{255, 255, 255, 255}},
		{"00ff00", color.RGBA{0, 255, 0, 255}},
		{"#ff000080", color.RGBA{128, 0, 0, 128}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseColor("#zzzzzz"); !errors.Is(err, ErrBadColor) {
		t.Errorf("ParseColor(#zzzzzz) error = %v", err)
	}
}

func TestMakeIdxSet(t *testing.T) {
	// a zigzag whose amplitude is visible at high zoom only
	pts := make([]geom.Point, 41)
	ts := make([]float64, len(pts))
	for i := range pts {
		y := 0.0
		if i%2 == 1 {
			y = 0.01
		}
		pts[i] = geom.Pt(float64(i)*0.05, y)
		ts[i] = float64(i)
	}
	a, err := NewTrack(7, pts, ts)
	if err != nil {
		t.Fatal(err)
	}

	low := a.MakeIdxSet(3)
	if diff := cmp.Diff([]int{0, 40}, slices.Collect(low.All())); diff != "" {
		t.Errorf("zoom 3 keeps (-want +got):\n%s", diff)
	}
	high := a.MakeIdxSet(10)
	if high.Count() != len(pts) {
		t.Errorf("zoom 10 keeps %d of %d points", high.Count(), len(pts))
	}
	if a.MakeIdxSet(3) != low {
		t.Error("MakeIdxSet did not cache")
	}

	prev := low
	for z := 4; z <= 10; z++ {
		cur := a.MakeIdxSet(z)
		if !cur.Has(0) || !cur.Has(40) {
			t.Errorf("zoom %d dropped an endpoint", z)
		}
		for i := range prev.All() {
			if !cur.Has(i) {
				t.Errorf("zoom %d dropped index %d kept at zoom %d", z, i, z-1)
			}
		}
		prev = cur
	}
}

func TestMakeIdxSetCollinear(t *testing.T) {
	a := line(t, 10)
	if got := slices.Collect(a.MakeIdxSet(20).All()); !cmp.Equal(got, []int{0, 9}) {
		t.Errorf("collinear points kept %v", got)
	}
}

func TestUpdateSegMask(t *testing.T) {
	a := line(t, 11)
	lod := a.MakeIdxSet(0)
	lod.Add(5) // force a split so there are two segments: 0-5 and 5-10

	if !a.UpdateSegMask(geom.R(6, -1, 20, 1), 0) {
		t.Fatal("track should be in view")
	}
	if diff := cmp.Diff([]int{5}, slices.Collect(a.SegMask().All())); diff != "" {
		t.Errorf("seg mask (-want +got):\n%s", diff)
	}
	if a.MaskZoom() != 0 {
		t.Errorf("MaskZoom() = %d", a.MaskZoom())
	}

	if a.UpdateSegMask(geom.R(0, 5, 10, 6), 0) {
		t.Error("track above the viewport reported in view")
	}
	if !a.SegMask().IsEmpty() {
		t.Error("mask not cleared")
	}

	a.UpdateSegMask(geom.R(-100, -100, 100, 100), 0)
	if a.SegMask().Count() != 2 {
		t.Errorf("full view mask = %v", slices.Collect(a.SegMask().All()))
	}
	a.ResetSegMask()
	if !a.SegMask().IsEmpty() || a.MaskZoom() != -1 {
		t.Error("ResetSegMask left state behind")
	}
}

func TestUpdateSegMaskPanicsWithoutIdxSet(t *testing.T) {
	a := line(t, 3)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	a.UpdateSegMask(geom.R(0, 0, 10, 10), 12)
}

func TestForEachSegment(t *testing.T) {
	a := line(t, 11)
	a.MakeIdxSet(0).Add(5)
	a.UpdateSegMask(geom.R(-1, -1, 20, 1), 0)

	var got [][4]float64
	n := a.ForEachSegment(func(x0, y0, x1, y1 float64) {
		got = append(got, [4]float64{x0, y0, x1, y1})
	}, nil)
	want := [][4]float64{{0, 0, 5, 0}, {5, 0, 10, 0}}
	if n != 2 || !cmp.Equal(want, got) {
		t.Errorf("ForEachSegment = %d %v, want %v", n, got, want)
	}
}

func TestForEachDot(t *testing.T) {
	a := line(t, 11) // x == t
	a.MakeIdxSet(0)
	a.UpdateSegMask(geom.R(-1, -1, 20, 1), 0)

	tests := []struct {
		name                 string
		tsecs, period, scale float64
		want                 []float64
	}{
		{"phase 1", 1, 5, 1, []float64{1, 6}},
		{"phase wraps", 7, 5, 1, []float64{2, 7}},
		{"time scale", 1, 5, 3, []float64{3, 8}},
		{"negative time", -1, 5, 1, []float64{4, 9}},
		{"long period", 2.5, 100, 1, []float64{2.5}},
		{"zero period", 1, 0, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var xs []float64
			n := a.ForEachDot(func(x, y float64) {
				xs = append(xs, x)
				if y != 0 {
					t.Errorf("dot off track at y=%v", y)
				}
			}, tt.tsecs, tt.period, tt.scale, nil)
			if n != len(xs) {
				t.Errorf("count %d != calls %d", n, len(xs))
			}
			if diff := cmp.Diff(tt.want, xs, cmpopts.EquateApprox(0, 1e-9), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("dot positions (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPartialSegMask(t *testing.T) {
	a := line(t, 11)
	lod := a.MakeIdxSet(0)
	lod.Add(3)
	lod.Add(7)
	a.UpdateSegMask(geom.R(-1, -1, 20, 1), 0)

	got := slices.Collect(a.PartialSegMask(geom.R(4, -1, 6, 1)).All())
	if !cmp.Equal(got, []int{3}) {
		t.Errorf("PartialSegMask = %v, want [3]", got)
	}
	dots := a.ForEachDot(func(x, y float64) {}, 0, 1, 1, a.PartialSegMask(geom.R(8, -1, 9, 1)))
	if dots != 3 { // t = 7, 8, 9 on segment 7-10
		t.Errorf("dots on partial mask = %d, want 3", dots)
	}
}

func TestAnyPointIn(t *testing.T) {
	a := line(t, 11)
	a.MakeIdxSet(0)
	a.UpdateSegMask(geom.R(-1, -1, 20, 1), 0)
	if !a.AnyPointIn(geom.R(9, -1, 11, 1)) {
		t.Error("last point not found")
	}
	// interior points were simplified away
	if a.AnyPointIn(geom.R(4, -1, 6, 1)) {
		t.Error("found a point that is not in the level-of-detail set")
	}
}

func TestSelectHook(t *testing.T) {
	a := line(t, 2)
	calls := 0
	a.OnSelect(func(got *Activity) {
		if got != a {
			t.Error("hook received another activity")
		}
		calls++
	})
	a.SetSelected(true)
	a.SetSelected(true)
	a.SetSelected(false)
	if calls != 2 {
		t.Errorf("hook called %d times, want 2", calls)
	}
}
