package program

import (
	"fmt"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/spf13/cast"
)

// writeOptions decodes {move, align, font}. The font is either a
// [family, size, weight] list or a mapping with those keys; missing parts
// keep their default.
func writeOptions(opts map[string]any) (domain.WriteOptions, error) {
	var raw struct {
		Move  bool   `mapstructure:"move"`
		Align string `mapstructure:"align"`
		Font  any    `mapstructure:"font"`
	}
	if err := decode(opts, &raw); err != nil {
		return domain.WriteOptions{}, fmt.Errorf("%w: write options: %v", ErrInvalidArguments, err)
	}

	switch raw.Align {
	case "", "left", "center", "right":
	default:
		return domain.WriteOptions{}, fmt.Errorf("%w: align must be left, center or right, got %q", ErrInvalidArguments, raw.Align)
	}

	wo := domain.WriteOptions{Move: raw.Move, Align: raw.Align}
	if raw.Font != nil {
		font, err := fontOption(raw.Font)
		if err != nil {
			return domain.WriteOptions{}, err
		}
		wo.Font = &font
	}
	return wo, nil
}

func fontOption(v any) (domain.Font, error) {
	font := domain.DefaultFont()
	switch f := v.(type) {
	case []any:
		if len(f) == 0 || len(f) > 3 {
			return font, fmt.Errorf("%w: font is [family, size, weight]", ErrInvalidArguments)
		}
		font.Family = cast.ToString(f[0])
		if len(f) > 1 {
			size, err := toNumber(f[1], "font size")
			if err != nil {
				return font, err
			}
			font.Size = size
		}
		if len(f) > 2 {
			font.Weight = cast.ToString(f[2])
		}
	case map[string]any:
		raw := struct {
			Family string  `mapstructure:"family"`
			Size   float64 `mapstructure:"size"`
			Weight string  `mapstructure:"weight"`
		}{font.Family, font.Size, font.Weight}
		if err := decode(f, &raw); err != nil {
			return font, fmt.Errorf("%w: font: %v", ErrInvalidArguments, err)
		}
		font = domain.Font{Family: raw.Family, Size: raw.Size, Weight: raw.Weight}
	case string:
		font.Family = f
	default:
		return font, fmt.Errorf("%w: unsupported font %T", ErrInvalidArguments, v)
	}
	return font, nil
}

// dotOptions reads dot(), dot(size), dot(size, color...), dot(color) and the
// {size, color} options. Positional arguments win over options.
func dotOptions(args []any, opts map[string]any) (domain.DotOptions, error) {
	var raw struct {
		Size  any `mapstructure:"size"`
		Color any `mapstructure:"color"`
	}
	if err := decode(opts, &raw); err != nil {
		return domain.DotOptions{}, fmt.Errorf("%w: dot options: %v", ErrInvalidArguments, err)
	}

	if len(args) > 0 {
		switch args[0].(type) {
		case string, []any:
			raw.Color = args[0]
			if len(args) > 1 {
				return domain.DotOptions{}, fmt.Errorf("%w: dot color must come after the size", ErrInvalidArguments)
			}
		default:
			raw.Size = args[0]
			switch rest := args[1:]; len(rest) {
			case 0:
			case 1:
				raw.Color = rest[0]
			default:
				raw.Color = rest
			}
		}
	}

	var do domain.DotOptions
	if raw.Size != nil {
		size, err := toNumber(raw.Size, "size")
		if err != nil {
			return do, err
		}
		do.Size = size
	}
	if raw.Color != nil {
		c, err := colorArg(raw.Color)
		if err != nil {
			return do, err
		}
		do.Color = c
	}
	return do, nil
}
