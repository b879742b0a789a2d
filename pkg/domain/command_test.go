package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_WireFormat(t *testing.T) {
	font := domain.DefaultFont()
	cmd := domain.Command{
		ID:       7,
		Type:     domain.CommandWrite,
		Snapshot: domain.NewState().Snapshot(),
		Text:     "hello",
		Align:    "left",
		Font:     &font,
	}

	data, err := json.Marshal(cmd)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, "write", fields["type"])
	assert.Equal(t, float64(7), fields["id"])
	assert.Equal(t, float64(90), fields["heading"])
	assert.Equal(t, "black", fields["color"])
	assert.Equal(t, "black", fields["fillColor"])
	assert.Equal(t, float64(1), fields["lineWidth"])
	assert.Equal(t, true, fields["isPenOn"])
	assert.Equal(t, true, fields["isTurtleOn"])
	assert.Equal(t, false, fields["isFilling"])
	assert.Equal(t, false, fields["isAnimating"])
	assert.Equal(t, []any{"Arial", float64(8), "normal"}, fields["font"])
	assert.NotContains(t, fields, "distance")
	assert.NotContains(t, fields, "radius")

	var decoded domain.Command
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, cmd, decoded)
}

func TestCommand_ZeroParametersStayOnTheWire(t *testing.T) {
	tests := []struct {
		name   string
		cmd    domain.Command
		keys   []string
		absent []string
	}{
		{"forward 0", domain.Command{Type: domain.CommandLine}, []string{"distance"}, []string{"degree", "radius"}},
		{"left 0", domain.Command{Type: domain.CommandLeft}, []string{"degree"}, []string{"distance"}},
		{"right 0", domain.Command{Type: domain.CommandRight}, []string{"degree"}, []string{"distance"}},
		{"circle r 0", domain.Command{Type: domain.CommandCircle, Radius: 20}, []string{"radius", "extent"}, []string{"steps"}},
		{"spiral circle", domain.Command{Type: domain.CommandSpiralCircle}, []string{"steps", "startRadius", "radiusStride", "angleStride"}, []string{"startArcLength"}},
		{"spiral forward", domain.Command{Type: domain.CommandSpiralForward}, []string{"steps", "startArcLength", "arcLengthStride", "angleStride"}, []string{"startRadius"}},
		{"write empty", domain.Command{Type: domain.CommandWrite}, []string{"text", "move", "align"}, []string{"size"}},
		{"dot", domain.Command{Type: domain.CommandDot, Size: 5, DotColor: "red"}, []string{"size", "dotColor"}, []string{"text"}},
		{"reset", domain.Command{Type: domain.CommandReset}, nil, []string{"distance", "degree", "radius", "steps"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.cmd)
			require.NoError(t, err)

			var fields map[string]any
			require.NoError(t, json.Unmarshal(data, &fields))
			assert.Equal(t, string(tt.cmd.Type), fields["type"])
			for _, k := range tt.keys {
				assert.Contains(t, fields, k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, fields, k)
			}
			assert.Contains(t, fields, "heading", "the snapshot is still embedded")

			var decoded domain.Command
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.cmd, decoded)
		})
	}

	data, err := json.Marshal(domain.Command{Type: domain.CommandLine})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"distance":0`)
}

func TestFont_RejectsShortTuple(t *testing.T) {
	var f domain.Font
	err := json.Unmarshal([]byte(`["Arial", 8]`), &f)
	assert.Error(t, err)
}

func TestPoint_Abs(t *testing.T) {
	assert.InDelta(t, 5.0, domain.Point{X: 3, Y: -4}.Abs(), 1e-12)
}
