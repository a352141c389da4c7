package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"screen-capture-fx/src/clipboard"
	"screen-capture-fx/src/nameparser"
	"screen-capture-fx/src/screenshot"
	"screen-capture-fx/src/surface"
)

var ErrSelectionCancelled = errors.New("selection cancelled")

// CaptureFunc grabs the whole virtual screen and reports where its top-left
// pixel sits in virtual-screen coordinates.
type CaptureFunc func() (*image.RGBA, image.Point, error)

// RegionSelectorFunc runs an interactive selection over the frozen capture.
// The result is in capture pixel coordinates.
type RegionSelectorFunc func(ctx context.Context, background *image.RGBA) (surface.Result, error)

// Applier post-processes the selected image, typically *watermark.Manager.
type Applier interface {
	Apply(img image.Image) image.Image
}

type ResultTarget interface {
	OnSuccess(img image.Image) error
	OnFailure(err error) error
}

type Options struct {
	Capture      CaptureFunc
	SelectRegion RegionSelectorFunc
	Watermark    Applier
	Target       ResultTarget
}

type Result struct {
	Region screenshot.Region
	Image  image.Image
}

func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.SelectRegion == nil {
		return Result{}, errors.New("SelectRegion is required")
	}
	if opts.Target == nil {
		return Result{}, errors.New("Target is required")
	}

	capture := opts.Capture
	if capture == nil {
		capture = captureScreen
	}

	fail := func(err error) (Result, error) {
		_ = opts.Target.OnFailure(err)
		return Result{}, err
	}

	full, origin, err := capture()
	if err != nil {
		return fail(err)
	}

	res, err := opts.SelectRegion(ctx, full)
	if err != nil {
		return fail(err)
	}
	if res.Kind == surface.ResultCancelled {
		return fail(ErrSelectionCancelled)
	}

	region := screenshot.FromResult(res, origin)
	img, err := screenshot.Crop(full, origin, region)
	if err != nil {
		return fail(err)
	}
	log.Printf("Session: selected %v (%d polygon points)", region.Rect, len(region.Polygon))

	var out image.Image = img
	if opts.Watermark != nil {
		out = opts.Watermark.Apply(img)
	}

	if err := opts.Target.OnSuccess(out); err != nil {
		return fail(err)
	}
	return Result{Region: region, Image: out}, nil
}

func captureScreen() (*image.RGBA, image.Point, error) {
	return captureVirtual(screenshot.VirtualBounds, screenshot.Capture)
}

// captureVirtual pairs a capture with the virtual-screen position of its
// top-left pixel. Captured images start at (0, 0) even when a display sits
// left of or above the primary one.
func captureVirtual(bounds func() (image.Rectangle, error), capture func() (*image.RGBA, error)) (*image.RGBA, image.Point, error) {
	vb, err := bounds()
	if err != nil {
		return nil, image.Point{}, err
	}
	img, err := capture()
	if err != nil {
		return nil, image.Point{}, err
	}
	return img, vb.Min, nil
}

// FileTarget saves the image as PNG under Dir, naming it from Pattern.
type FileTarget struct {
	Dir     string
	Pattern string
	Names   *nameparser.Parser
	// OnSaved, when set, receives the written path.
	OnSaved func(path string)
}

func (t FileTarget) OnSuccess(img image.Image) error {
	names := t.Names
	if names == nil {
		names = nameparser.ForFileNames()
	}
	name := strings.TrimSpace(names.Resolve(t.Pattern, img))
	if name == "" {
		name = "screenshot"
	}
	if !strings.EqualFold(filepath.Ext(name), ".png") {
		name += ".png"
	}

	dir := t.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := uniquePath(filepath.Join(dir, name))
	if err := WritePNG(path, img); err != nil {
		return err
	}
	log.Printf("Session: saved %s", path)
	if t.OnSaved != nil {
		t.OnSaved(path)
	}
	return nil
}

func (FileTarget) OnFailure(err error) error {
	return nil
}

// WritePNG writes img to path through a temporary file in the same directory.
func WritePNG(path string, img image.Image) error {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".capture-*.png")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// uniquePath appends _1, _2, ... before the extension until path is unused.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		p := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p
		}
	}
}

type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(img image.Image) error {
	return clipboard.WriteImage(img)
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}

// StdoutTarget writes the PNG bytes to Writer (os.Stdout by default).
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(img image.Image) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}

// MultiTarget delivers to every target in order, stopping at the first error.
type MultiTarget []ResultTarget

func (m MultiTarget) OnSuccess(img image.Image) error {
	for _, t := range m {
		if err := t.OnSuccess(img); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiTarget) OnFailure(err error) error {
	var errs []error
	for _, t := range m {
		errs = append(errs, t.OnFailure(err))
	}
	return errors.Join(errs...)
}
