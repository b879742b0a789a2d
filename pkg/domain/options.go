package domain

// WriteOptions are the optional arguments of a write call.
type WriteOptions struct {
	// Move is forwarded to the renderer on the command. The engine never moves
	// the turtle when writing.
	Move bool `json:"move" mapstructure:"move"`
	// Align is "left", "center" or "right". Empty means "left".
	Align string `json:"align" mapstructure:"align"`
	// Font defaults to DefaultFont when nil.
	Font *Font `json:"font" mapstructure:"-"`
}

// DotOptions are the optional arguments of a dot call.
type DotOptions struct {
	// Size is the dot radius. Zero derives it from the pen width.
	Size float64
	// Color defaults to the current stroke color when zero.
	Color Color
}
