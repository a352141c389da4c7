// Package watchfolder watermarks images as they are dropped into a folder.
package watchfolder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"screen-capture-fx/src/imageload"
	"screen-capture-fx/src/session"
	"screen-capture-fx/src/worker"
)

// DefaultSettle is how long a file must stay quiet before it is picked up.
const DefaultSettle = 500 * time.Millisecond

// OutputSubdir is used when Options.OutputDir is empty.
const OutputSubdir = "watermarked"

type Options struct {
	Dir       string
	OutputDir string
	Settle    time.Duration
	Pool      *worker.Pool
	Images    imageload.Loader
	// OnDone, when set, is called from a worker goroutine after each file.
	OnDone func(src, dst string, err error)
}

// Run watches Dir until ctx is done, queueing every new or rewritten image
// on Pool and writing the result as PNG into OutputDir. Hidden files and
// directories are ignored.
func Run(ctx context.Context, opts Options) error {
	if opts.Pool == nil {
		return errors.New("Pool is required")
	}
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", opts.Dir, err)
	}
	out := opts.OutputDir
	if out == "" {
		out = filepath.Join(dir, OutputSubdir)
	}
	if out, err = filepath.Abs(out); err != nil {
		return fmt.Errorf("failed to resolve %s: %w", opts.OutputDir, err)
	}
	if out == dir {
		return errors.New("output directory must differ from the watched directory")
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	loader := opts.Images
	if loader == nil {
		loader = imageload.FileLoader{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Printf("Watchfolder: watching %s, writing to %s", dir, out)

	d := newDebouncer(settle)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			d.touch(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watchfolder: watch error: %v", err)
		case path := <-d.ready:
			if st, err := os.Stat(path); err != nil || st.IsDir() {
				continue
			}
			job := worker.Job{Name: path, Load: func() (image.Image, error) { return loader.Load(path) }}
			if err := opts.Pool.SubmitWait(ctx, job, saver(out, opts.OnDone)); err != nil {
				return nil
			}
		}
	}
}

func saver(out string, onDone func(src, dst string, err error)) worker.ResultCallback {
	return func(src string, img image.Image, err error) {
		var dst string
		if err == nil {
			base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
			dst = filepath.Join(out, base+".png")
			err = session.WritePNG(dst, img)
		}
		if err != nil {
			if errors.Is(err, imageload.ErrUnreadable) {
				log.Printf("Watchfolder: skipping %s: not an image", src)
			} else {
				log.Printf("Watchfolder: %s: %v", src, err)
			}
		} else {
			log.Printf("Watchfolder: %s -> %s", src, dst)
		}
		if onDone != nil {
			onDone(src, dst, err)
		}
	}
}

// debouncer emits a path on ready once no touch for it arrived for delay.
type debouncer struct {
	delay time.Duration
	ready chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
	done   chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		ready:  make(chan string),
		timers: map[string]*time.Timer{},
		done:   make(chan struct{}),
	}
}

func (d *debouncer) touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		select {
		case d.ready <- path:
		case <-d.done:
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.timers {
		t.Stop()
	}
	close(d.done)
}
