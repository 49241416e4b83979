package masking

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseRects reads a rectangle descriptor: one "x1 y1 x2 y2" rectangle per
// line, half-open on the far edges. Blank lines and lines starting with '#'
// are skipped.
func ParseRects(r io.Reader) ([]image.Rectangle, error) {
	var rects []image.Rectangle
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("masking: line %d: want 4 coordinates, got %d", lineNo, len(fields))
		}
		var c [4]int
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("masking: line %d: %w", lineNo, err)
			}
			c[i] = v
		}
		// Not image.Rect: swapped corners must stay empty rather than be canonicalized.
		rects = append(rects, image.Rectangle{Min: image.Pt(c[0], c[1]), Max: image.Pt(c[2], c[3])})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rects, nil
}

// ReadRectsFile parses a descriptor file from disk.
func ReadRectsFile(path string) ([]image.Rectangle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rects, err := ParseRects(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rects, nil
}

// FromRects builds a w×h mask with every rectangle filled with 255.
// Rectangles are clipped to the mask; empty ones are ignored.
func FromRects(w, h int, rects []image.Rectangle) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for _, r := range rects {
		r = r.Intersect(mask.Rect)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := mask.Pix[y*mask.Stride:]
			for x := r.Min.X; x < r.Max.X; x++ {
				row[x] = 0xff
			}
		}
	}
	return mask
}
