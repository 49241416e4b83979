// Package canvas builds the enlarged canvas and fill mask for outpainting.
package canvas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultPixels is the padding used when the pixels parameter is missing or unusable.
const DefaultPixels = 256

// MaxPixels bounds a single side so a request cannot allocate an unbounded canvas.
const MaxPixels = 4096

var (
	ErrInvalidDirection = errors.New("canvas: invalid direction")
	ErrInvalidPadding   = errors.New("canvas: invalid padding")
)

// Direction selects which sides an integer padding applies to.
type Direction string

const (
	DirectionLeft       Direction = "left"
	DirectionRight      Direction = "right"
	DirectionTop        Direction = "top"
	DirectionBottom     Direction = "bottom"
	DirectionHorizontal Direction = "horizontal"
	DirectionVertical   Direction = "vertical"
	DirectionAll        Direction = "all"
)

// Directions lists every accepted direction.
var Directions = []Direction{
	DirectionLeft, DirectionRight, DirectionTop, DirectionBottom,
	DirectionHorizontal, DirectionVertical, DirectionAll,
}

// ParseDirection accepts any Directions value, case-insensitively.
// An empty string means DirectionAll.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if d == "" {
		return DirectionAll, nil
	}
	for _, known := range Directions {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

func (d Direction) left() bool {
	return d == DirectionLeft || d == DirectionHorizontal || d == DirectionAll
}

func (d Direction) right() bool {
	return d == DirectionRight || d == DirectionHorizontal || d == DirectionAll
}

func (d Direction) top() bool {
	return d == DirectionTop || d == DirectionVertical || d == DirectionAll
}

func (d Direction) bottom() bool {
	return d == DirectionBottom || d == DirectionVertical || d == DirectionAll
}

// Padding is the number of pixels added on each side.
type Padding struct {
	Left   int `json:"left" yaml:"left"`
	Right  int `json:"right" yaml:"right"`
	Top    int `json:"top" yaml:"top"`
	Bottom int `json:"bottom" yaml:"bottom"`
}

// Uniform returns n pixels on the sides selected by d.
func Uniform(d Direction, n int) Padding {
	var p Padding
	if d.left() {
		p.Left = n
	}
	if d.right() {
		p.Right = n
	}
	if d.top() {
		p.Top = n
	}
	if d.bottom() {
		p.Bottom = n
	}
	return p
}

// IsZero reports whether no side is padded.
func (p Padding) IsZero() bool {
	return p == Padding{}
}

// Validate rejects negative or oversized sides.
func (p Padding) Validate() error {
	for name, v := range map[string]int{"left": p.Left, "right": p.Right, "top": p.Top, "bottom": p.Bottom} {
		if v < 0 {
			return fmt.Errorf("%w: %s is negative (%d)", ErrInvalidPadding, name, v)
		}
		if v > MaxPixels {
			return fmt.Errorf("%w: %s exceeds %d (%d)", ErrInvalidPadding, name, MaxPixels, v)
		}
	}
	return nil
}

// ResolvePadding interprets the "pixels" request parameter.
//
//   - absent or null: DefaultPixels on all four sides, whatever direction says
//   - an integer: that many pixels on the sides selected by direction
//   - an object: explicit "left", "right", "top", "bottom"; missing keys are 0
//     and direction is ignored
//   - anything else (strings, fractions, arrays): DefaultPixels on all four sides
func ResolvePadding(direction Direction, pixels json.RawMessage) (Padding, error) {
	raw := bytes.TrimSpace(pixels)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Uniform(DirectionAll, DefaultPixels), nil
	}

	var p Padding
	switch raw[0] {
	case '{':
		var sides map[string]json.RawMessage
		if err := json.Unmarshal(raw, &sides); err != nil {
			return Padding{}, fmt.Errorf("%w: %v", ErrInvalidPadding, err)
		}
		for key, dst := range map[string]*int{"left": &p.Left, "right": &p.Right, "top": &p.Top, "bottom": &p.Bottom} {
			v, ok := sides[key]
			if !ok {
				continue
			}
			n, isInt := parseInt(v)
			if !isInt {
				return Padding{}, fmt.Errorf("%w: %s must be an integer, got %s", ErrInvalidPadding, key, v)
			}
			*dst = n
		}
	default:
		if n, isInt := parseInt(raw); isInt {
			p = Uniform(direction, n)
		} else {
			p = Uniform(DirectionAll, DefaultPixels)
		}
	}

	if err := p.Validate(); err != nil {
		return Padding{}, err
	}
	return p, nil
}

func parseInt(raw json.RawMessage) (int, bool) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, false
	}
	// Strings also decode into json.Number; only bare numerals count.
	if len(raw) > 0 && raw[0] == '"' {
		return 0, false
	}
	n, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return int(n), true
}
