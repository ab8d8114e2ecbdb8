package activity

import (
	"math"

	"github.com/gogpu/dotlayer/geom"
	"github.com/gogpu/dotlayer/viewbox"
)

// MaxLatitude is the latitude limit of the Web Mercator square.
const MaxLatitude = 85.0511287798

// Project maps a WGS84 coordinate to Web Mercator world pixels at zoom 0.
func Project(lat, lng float64) geom.Point {
	lat = max(-MaxLatitude, min(MaxLatitude, lat))
	s := math.Sin(lat * math.Pi / 180)
	x := (lng + 180) / 360
	y := 0.5 - math.Log((1+s)/(1-s))/(4*math.Pi)
	return geom.Pt(x*viewbox.TileSize, y*viewbox.TileSize)
}

// Unproject is the inverse of Project.
func Unproject(p geom.Point) (lat, lng float64) {
	x := p.X / viewbox.TileSize
	y := p.Y / viewbox.TileSize
	lng = x*360 - 180
	lat = 90 - 360*math.Atan(math.Exp((y-0.5)*2*math.Pi))/math.Pi
	return lat, lng
}
