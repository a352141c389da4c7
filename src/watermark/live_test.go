package watermark

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiveReconfigure(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))

	cfg := DefaultConfig()
	cfg.Text = ""
	l := NewLive(cfg)
	assert.Same(t, src, l.Apply(src).(*image.RGBA), "empty text skips the watermark")

	cfg.Text = "live"
	l.Reconfigure(cfg)
	assert.Equal(t, "live", l.Config().Text)
	assert.NotSame(t, src, l.Apply(src).(*image.RGBA))
}
