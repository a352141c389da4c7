package clipboard

import (
	"fmt"
	"image"
	"sync"

	"golang.design/x/clipboard"

	"screen-capture-fx/src/screenshot"
)

var (
	writeMu  sync.Mutex
	initOnce sync.Once
	initErr  error
)

// Init prepares the system clipboard. It is safe to call repeatedly; the
// first result is remembered.
func Init() error {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	return initErr
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func Write(text string) error {
	return write(clipboard.FmtText, []byte(text))
}

// WriteImage places img on the clipboard as PNG.
func WriteImage(img image.Image) error {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return err
	}
	return write(clipboard.FmtImage, data)
}

func write(format clipboard.Format, data []byte) error {
	if err := Init(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(format, data)
	return nil
}
