package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/kbinani/screenshot"

	"screen-capture-fx/src/surface"
)

var ErrNoDisplay = errors.New("no active displays found")

// Region is a screen area in absolute virtual-screen coordinates.
type Region struct {
	Rect image.Rectangle
	// Polygon is optional. When it has at least three points CaptureRegion
	// makes the pixels outside it transparent while still returning a
	// rectangular image.
	Polygon []image.Point
}

// FromResult converts a selection made on a surface whose top-left corner
// sits at origin on the virtual screen.
func FromResult(res surface.Result, origin image.Point) Region {
	r := Region{Rect: res.Area.Add(origin)}
	if len(res.Polygon) > 0 {
		r.Polygon = make([]image.Point, len(res.Polygon))
		for i, p := range res.Polygon {
			r.Polygon[i] = p.Add(origin)
		}
	}
	return r
}

// VirtualBounds is the union of all active display bounds.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, ErrNoDisplay
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// Capture captures the entire virtual screen across all active displays
func Capture() (*image.RGBA, error) {
	union, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	return img, nil
}

// CaptureRegion captures a specific region of the screen
func CaptureRegion(region Region) (*image.RGBA, error) {
	if region.Rect.Dx() <= 0 || region.Rect.Dy() <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Rect.Dx(), region.Rect.Dy())
	}

	img, err := screenshot.CaptureRect(region.Rect)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}

	if len(region.Polygon) >= 3 {
		applyPolygonMask(img, region)
	}
	return img, nil
}

// Crop copies region out of an existing full-screen capture whose top-left
// pixel is at origin, applying the polygon mask like CaptureRegion.
func Crop(full *image.RGBA, origin image.Point, region Region) (*image.RGBA, error) {
	local := region.Rect.Sub(origin).Intersect(full.Bounds())
	if local.Empty() {
		return nil, fmt.Errorf("region %v outside capture", region.Rect)
	}
	img := image.NewRGBA(image.Rect(0, 0, local.Dx(), local.Dy()))
	for y := 0; y < local.Dy(); y++ {
		src := full.PixOffset(local.Min.X, local.Min.Y+y)
		copy(img.Pix[y*img.Stride:y*img.Stride+local.Dx()*4], full.Pix[src:src+local.Dx()*4])
	}
	if len(region.Polygon) >= 3 {
		applyPolygonMask(img, Region{
			Rect:    image.Rectangle{Min: local.Min.Add(origin), Max: local.Max.Add(origin)},
			Polygon: region.Polygon,
		})
	}
	return img, nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// GetDisplayBounds returns the bounds of the primary display
func GetDisplayBounds() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, ErrNoDisplay
	}
	return screenshot.GetDisplayBounds(0), nil
}

// applyPolygonMask clears every pixel of img whose centre lies outside the
// polygon. img's origin corresponds to region.Rect.Min.
func applyPolygonMask(img *image.RGBA, region Region) {
	local := make([]image.Point, len(region.Polygon))
	for i, p := range region.Polygon {
		local[i] = p.Sub(region.Rect.Min)
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !pointInPolygon(float64(x-b.Min.X)+0.5, float64(y-b.Min.Y)+0.5, local) {
				i := img.PixOffset(x, y)
				clear(img.Pix[i : i+4])
			}
		}
	}
}

func pointInPolygon(px, py float64, polygon []image.Point) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		xi := float64(polygon[i].X)
		yi := float64(polygon[i].Y)
		xj := float64(polygon[j].X)
		yj := float64(polygon[j].Y)

		if pointOnSegment(px, py, xi, yi, xj, yj) {
			return true
		}

		intersects := ((yi > py) != (yj > py)) &&
			(px < (xj-xi)*(py-yi)/(yj-yi)+xi)
		if intersects {
			inside = !inside
		}
	}

	return inside
}

func pointOnSegment(px, py, x1, y1, x2, y2 float64) bool {
	const epsilon = 0.5
	cross := (px-x1)*(y2-y1) - (py-y1)*(x2-x1)
	if math.Abs(cross) > epsilon {
		return false
	}

	minX := math.Min(x1, x2) - epsilon
	maxX := math.Max(x1, x2) + epsilon
	minY := math.Min(y1, y2) - epsilon
	maxY := math.Max(y1, y2) + epsilon
	return px >= minX && px <= maxX && py >= minY && py <= maxY
}
