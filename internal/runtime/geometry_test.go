package runtime

import (
	"math"
	"testing"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{360, 0},
		{-360, 0},
		{-90, 270},
		{450, 90},
		{-450, 270},
		{719.5, 359.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHeading(tt.in), "normalizeHeading(%v)", tt.in)
	}

	// Values just below zero must not round up to 360.
	h := normalizeHeading(-1e-14)
	assert.GreaterOrEqual(t, h, 0.0)
	assert.Less(t, h, 360.0)
}

func TestAdvance(t *testing.T) {
	p := advance(domain.Point{X: 1, Y: 1}, 0, 10)
	assert.InDelta(t, 11, p.X, 1e-12)
	assert.InDelta(t, 1, p.Y, 1e-12)

	p = advance(domain.Point{}, 225, math.Sqrt2)
	assert.InDelta(t, -1, p.X, 1e-12)
	assert.InDelta(t, -1, p.Y, 1e-12)
}

func TestArcCenter(t *testing.T) {
	c := arcCenter(domain.Point{}, 90, 50)
	assert.InDelta(t, -50, c.X, 1e-12)
	assert.InDelta(t, 0, c.Y, 1e-12)

	c = arcCenter(domain.Point{}, 90, -50)
	assert.InDelta(t, 50, c.X, 1e-12)
	assert.InDelta(t, 0, c.Y, 1e-12)
}

func TestOrbit_HalfTurn(t *testing.T) {
	end, heading := orbit(domain.Point{}, 0, 10, 180)
	assert.InDelta(t, 0, end.X, 1e-12)
	assert.InDelta(t, 20, end.Y, 1e-12)
	assert.Equal(t, 180.0, heading)
}

func TestSpiralEnds_RoundPositions(t *testing.T) {
	p, h := spiralCircleEnd(domain.Point{}, 90, 4, 10, 5, 90)
	assert.Equal(t, domain.Point{X: 20, Y: 0}, p)
	assert.Equal(t, 90.0, h)

	p, h = spiralForwardEnd(domain.Point{}, 90, 4, 10, 10, 90)
	assert.Equal(t, domain.Point{X: 20, Y: -20}, p)
	assert.Equal(t, 90.0, h)

	p, h = spiralForwardEnd(domain.Point{X: 3, Y: 4}, 45, 0, 10, 10, 90)
	assert.Equal(t, domain.Point{X: 3, Y: 4}, p)
	assert.Equal(t, 45.0, h)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.0, roundTo(0.99999999999999, finalPrecision))
	assert.Equal(t, 0.1234567891, roundTo(0.12345678912, finalPrecision))
}
