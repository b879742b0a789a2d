package runtime

import (
	"math"

	"github.com/aretw0/turtle/pkg/domain"
)

// finalPrecision is the number of decimals spiral end positions are rounded to.
const finalPrecision = 10

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// normalizeHeading maps any angle into [0, 360).
func normalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 || h == 0 {
		return 0
	}
	return h
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// advance moves p by distance along heading (degrees).
func advance(p domain.Point, heading, distance float64) domain.Point {
	rad := radians(heading)
	return domain.Point{
		X: p.X + math.Cos(rad)*distance,
		Y: p.Y + math.Sin(rad)*distance,
	}
}

// arcCenter returns the point the turtle orbits when tracing a circle of the
// given radius: perpendicular to the heading, on the left for positive radii.
func arcCenter(p domain.Point, heading, radius float64) domain.Point {
	start := heading - 90
	return domain.Point{
		X: p.X + radius*math.Cos(radians(start+180)),
		Y: p.Y + radius*math.Sin(radians(start+180)),
	}
}

// orbit returns the pose reached after tracing extent degrees of a circle.
// The returned heading is not normalized. It is derived from heading and
// extent alone so that whole turns give back the starting heading exactly.
func orbit(p domain.Point, heading, radius, extent float64) (domain.Point, float64) {
	start := heading - 90
	center := arcCenter(p, heading, radius)
	end := domain.Point{
		X: center.X + radius*math.Cos(radians(start+extent)),
		Y: center.Y + radius*math.Sin(radians(start+extent)),
	}
	return end, heading + math.Mod(extent, 360)
}

// spiralCircleEnd simulates steps arcs whose radius grows by radiusStride and
// which each turn the turtle by angleStride.
func spiralCircleEnd(p domain.Point, heading float64, steps int, startRadius, radiusStride, angleStride float64) (domain.Point, float64) {
	for i := 0; i < steps; i++ {
		radius := startRadius + float64(i)*radiusStride
		p, _ = orbit(p, heading, radius, angleStride)
		heading += angleStride
	}
	return domain.Point{X: roundTo(p.X, finalPrecision), Y: roundTo(p.Y, finalPrecision)}, normalizeHeading(heading)
}

// spiralForwardEnd simulates steps straight segments of growing length, each
// followed by a left turn of angleStride.
func spiralForwardEnd(p domain.Point, heading float64, steps int, startArcLength, arcLengthStride, angleStride float64) (domain.Point, float64) {
	for i := 0; i < steps; i++ {
		p = advance(p, heading, startArcLength+float64(i)*arcLengthStride)
		heading += angleStride
	}
	return domain.Point{X: roundTo(p.X, finalPrecision), Y: roundTo(p.Y, finalPrecision)}, normalizeHeading(heading)
}
