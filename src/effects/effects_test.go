package effects

import (
	"image"
	"image/color"
	"testing"
)

func TestReflectionMirrorsAndFades(t *testing.T) {
	// Top half red, bottom half blue; the reflection shows the bottom half first.
	src := image.NewRGBA(image.Rect(0, 0, 4, 10))
	for y := 0; y < 10; y++ {
		c := color.RGBA{R: 255, A: 255}
		if y >= 5 {
			c = color.RGBA{B: 255, A: 255}
		}
		for x := 0; x < 4; x++ {
			src.SetRGBA(x, y, c)
		}
	}

	got := Reflection(src, DefaultReflection)
	if got == nil {
		t.Fatal("expected a reflection")
	}
	if got.Bounds() != image.Rect(0, 0, 4, 5) {
		t.Fatalf("bounds = %v, want 4x5", got.Bounds())
	}

	first := got.RGBAAt(0, 0)
	if first.A != 150 || first.B != 150 || first.R != 0 {
		t.Errorf("first row = %#v, want blue at alpha 150", first)
	}
	last := got.RGBAAt(0, 4)
	if last.A != 10 {
		t.Errorf("last row alpha = %d, want 10", last.A)
	}
	for y := 1; y < 5; y++ {
		if got.RGBAAt(0, y).A > got.RGBAAt(0, y-1).A {
			t.Errorf("alpha increases at row %d", y)
		}
	}
}

func TestReflectionEmpty(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 1))
	if got := Reflection(src, DefaultReflection); got != nil {
		t.Errorf("expected nil for a one-row source, got %v", got.Bounds())
	}
}

func TestResize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 20))
	got := Resize(src, 5, 10)
	if got.Bounds().Dx() != 5 || got.Bounds().Dy() != 10 {
		t.Errorf("Resize bounds = %v, want 5x10", got.Bounds())
	}
	same := Resize(src, 10, 20)
	if same == src {
		t.Error("Resize to the same size must still return a copy")
	}
}
