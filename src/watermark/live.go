package watermark

import (
	"image"
	"sync/atomic"
)

// Live applies whichever configuration was stored last. Reconfigure may be
// called while other goroutines are in Apply; calls already running finish
// with the configuration they started with.
type Live struct {
	cur atomic.Pointer[Manager]
}

func NewLive(cfg Config) *Live {
	l := &Live{}
	l.Reconfigure(cfg)
	return l
}

func (l *Live) Reconfigure(cfg Config) {
	l.cur.Store(NewManager(cfg))
}

func (l *Live) Config() Config {
	return l.cur.Load().Config
}

func (l *Live) Apply(img image.Image) image.Image {
	return l.cur.Load().Apply(img)
}
