package canvas

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"", DirectionAll, false},
		{"all", DirectionAll, false},
		{"Horizontal", DirectionHorizontal, false},
		{" top ", DirectionTop, false},
		{"diagonal", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDirection) {
					t.Errorf("ParseDirection(%q) error = %v, want ErrInvalidDirection", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseDirection(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestResolvePadding(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		pixels    string
		want      Padding
	}{
		{"int all", DirectionAll, `256`, Padding{256, 256, 256, 256}},
		{"int left", DirectionLeft, `100`, Padding{Left: 100}},
		{"int right", DirectionRight, `100`, Padding{Right: 100}},
		{"int top", DirectionTop, `64`, Padding{Top: 64}},
		{"int bottom", DirectionBottom, `64`, Padding{Bottom: 64}},
		{"int horizontal", DirectionHorizontal, `32`, Padding{Left: 32, Right: 32}},
		{"int vertical", DirectionVertical, `32`, Padding{Top: 32, Bottom: 32}},
		{"object ignores direction", DirectionLeft, `{"top": 10, "bottom": 20}`, Padding{Top: 10, Bottom: 20}},
		{"object full", DirectionAll, `{"left":1,"right":2,"top":3,"bottom":4}`, Padding{1, 2, 3, 4}},
		{"empty object", DirectionAll, `{}`, Padding{}},
		{"missing ignores direction", DirectionHorizontal, ``, Padding{256, 256, 256, 256}},
		{"null ignores direction", DirectionLeft, `null`, Padding{256, 256, 256, 256}},
		{"null uses default", DirectionAll, `null`, Padding{256, 256, 256, 256}},
		{"string falls back", DirectionLeft, `"100"`, Padding{256, 256, 256, 256}},
		{"fraction falls back", DirectionLeft, `12.5`, Padding{256, 256, 256, 256}},
		{"array falls back", DirectionTop, `[1,2]`, Padding{256, 256, 256, 256}},
		{"zero", DirectionAll, `0`, Padding{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePadding(tt.direction, json.RawMessage(tt.pixels))
			if err != nil {
				t.Fatalf("ResolvePadding() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolvePadding(%q, %s) = %+v, want %+v", tt.direction, tt.pixels, got, tt.want)
			}
		})
	}
}

func TestResolvePadding_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		pixels string
	}{
		{"negative int", `-5`},
		{"negative side", `{"left": -1}`},
		{"oversized", `100000`},
		{"non-integer side", `{"left": "wide"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolvePadding(DirectionAll, json.RawMessage(tt.pixels))
			if !errors.Is(err, ErrInvalidPadding) {
				t.Errorf("ResolvePadding(%s) error = %v, want ErrInvalidPadding", tt.pixels, err)
			}
		})
	}
}
