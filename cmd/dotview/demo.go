package main

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/twpayne/go-polyline"

	"github.com/gogpu/dotlayer/activity"
)

var demoTypes = []string{"Run", "Ride", "Hike", "Walk"}

// demoSpecs returns n random walks starting near (lat, lng), encoded the
// way the import stream carries them.
func demoSpecs(lat, lng float64, n int, seed int64) ([]activity.Spec, error) {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
	specs := make([]activity.Spec, 0, n)
	for i := range n {
		pts := 200 + rng.IntN(800)
		coords := make([][]float64, pts)
		times := make([]float64, pts)
		la := lat + (rng.Float64()-0.5)*0.1
		ln := lng + (rng.Float64()-0.5)*0.15
		heading := rng.Float64() * 2 * math.Pi
		for j := range coords {
			coords[j] = []float64{la, ln}
			if j > 0 {
				times[j] = times[j-1] + float64(1+rng.IntN(5))
			}
			heading += (rng.Float64() - 0.5) * 0.6
			la += 0.0002 * math.Sin(heading)
			ln += 0.0003 * math.Cos(heading)
		}
		typ := demoTypes[i%len(demoTypes)]
		specs = append(specs, activity.Spec{
			ID:          int64(i + 1),
			Type:        typ,
			Name:        fmt.Sprintf("%s #%d", typ, i+1),
			Polyline:    string(polyline.EncodeCoords(coords)),
			Time:        activity.EncodeTimeStream(times),
			ElapsedTime: times[len(times)-1],
		})
	}
	if n > 0 {
		// the track must decode to the same number of points and times
		if _, err := activity.New(specs[0]); err != nil {
			return nil, fmt.Errorf("demo tracks: %w", err)
		}
	}
	return specs, nil
}
