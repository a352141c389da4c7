package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"screen-capture-fx/src/config"
	"screen-capture-fx/src/imageload"
	"screen-capture-fx/src/logutil"
	"screen-capture-fx/src/notification"
	"screen-capture-fx/src/overlay"
	"screen-capture-fx/src/session"
	"screen-capture-fx/src/surface"
	"screen-capture-fx/src/watchfolder"
	"screen-capture-fx/src/watermark"
	"screen-capture-fx/src/worker"
)

const (
	maxInputSizeMB = 64
	maxInputSize   = maxInputSizeMB * 1024 * 1024
	appID          = "dev.screen-capture-fx"
)

type cliOptions struct {
	verbose         bool
	shape           string
	quickCrop       bool
	outputDir       string
	watermarkConfig string
	workers         int
	noWatermark     bool
	clipboard       bool
	stdout          bool
	notify          bool
	settle          time.Duration
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWithArgs(ctx, os.Args)
}

func runWithArgs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"capture-fx"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "capture-fx",
		Short:         "Capture screen regions and stamp watermarks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "Output directory (overrides OUTPUT_DIR)")
	flags.StringVar(&opts.watermarkConfig, "watermark-config", "", "Watermark TOML file (overrides WATERMARK_CONFIG)")
	flags.IntVar(&opts.workers, "workers", 0, "Watermark worker count (overrides WATERMARK_WORKERS)")

	cmd.AddCommand(newWatermarkCmd(opts), newCaptureCmd(opts), newWatchCmd(opts))
	return cmd
}

func newWatermarkCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watermark FILES...",
		Short: "Watermark image files (use '-' to read stdin and write PNG to stdout)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if len(args) == 1 && args[0] == "-" {
				return watermarkStream(cmd.InOrStdin(), cmd.OutOrStdout(), watermark.NewManager(cfg.Watermark))
			}
			return watermarkFiles(cmd.Context(), cmd.OutOrStdout(), cfg, args)
		},
	}
}

func newCaptureCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Select a screen region interactively and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return runCapture(cmd.Context(), cmd.OutOrStdout(), cfg, *opts)
		},
	}
	cmd.Flags().StringVar(&opts.shape, "shape", "", "Region shape: rectangle, ellipse, freehand (overrides REGION_SHAPE)")
	cmd.Flags().BoolVar(&opts.quickCrop, "quick-crop", true, "Finish on mouse release (overrides QUICK_CROP)")
	cmd.Flags().BoolVar(&opts.noWatermark, "no-watermark", false, "Skip the watermark")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "Also copy the image to the clipboard")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Write PNG to stdout instead of a file")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "Show a desktop notification when done")
	return cmd
}

func newWatchCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Watermark images as they appear in DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], *opts)
		},
	}
	cmd.Flags().DurationVar(&opts.settle, "settle", watchfolder.DefaultSettle, "Quiet period before a new file is processed")
	return cmd
}

// setup configures logging and loads configuration with flag overrides.
func setup(cmd *cobra.Command, opts *cliOptions) (*config.Config, error) {
	// Configure logging BEFORE any other operations.
	logutil.SetupWithOptions(logutil.Options{Verbose: opts.verbose})

	loadOptions := config.LoadOptions{
		RegionShapeOverride:     opts.shape,
		WatermarkConfigOverride: opts.watermarkConfig,
		OutputDirOverride:       opts.outputDir,
		WorkersOverride:         opts.workers,
	}
	if f := cmd.Flags().Lookup("quick-crop"); f != nil && f.Changed {
		loadOptions.QuickCropOverride = &opts.quickCrop
	}

	cfg, err := config.LoadWithOptions(loadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.EnableFileLogging {
		logutil.SetupWithOptions(logutil.Options{EnableFile: true, Verbose: opts.verbose})
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Config loaded: shape=%v quick-crop=%v workers=%d watermark=%q\n",
			cfg.RegionShape, cfg.QuickCrop, cfg.WatermarkWorkers, cfg.WatermarkConfigPath)
	}
	return cfg, nil
}

func watermarkStream(in io.Reader, out io.Writer, m *watermark.Manager) error {
	data, err := io.ReadAll(io.LimitReader(in, maxInputSize+1))
	if err != nil {
		return fmt.Errorf("failed to read from stdin: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("input is empty")
	}
	if len(data) > maxInputSize {
		return fmt.Errorf("input exceeds maximum size of %d MB", maxInputSizeMB)
	}
	img, err := imageload.Decode(data)
	if err != nil {
		return err
	}
	return session.StdoutTarget{Writer: out}.OnSuccess(m.Apply(img))
}

func watermarkFiles(ctx context.Context, out io.Writer, cfg *config.Config, files []string) error {
	pool := worker.New(cfg.WatermarkWorkers, watermark.NewManager(cfg.Watermark))

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		pool.Close()
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	done := func(src string, img image.Image, err error) {
		var dst string
		if err == nil {
			dst = outputPath(cfg.OutputDir, src)
			err = session.WritePNG(dst, img)
		}
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
			return
		}
		fmt.Fprintln(out, dst)
	}

	for _, f := range files {
		path := f
		job := worker.Job{Name: path, Load: func() (image.Image, error) { return imageload.Load(path) }}
		if err := pool.SubmitWait(ctx, job, done); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
	}
	pool.Close()
	return errors.Join(errs...)
}

// outputPath names the watermarked copy of src inside dir as PNG, avoiding
// overwriting src itself.
func outputPath(dir, src string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(dir, base+".png")
	if a, err := filepath.Abs(dst); err == nil {
		if b, err := filepath.Abs(src); err == nil && a == b {
			dst = filepath.Join(dir, base+"_watermarked.png")
		}
	}
	return dst
}

func captureTarget(out io.Writer, cfg *config.Config, opts cliOptions) session.ResultTarget {
	var targets session.MultiTarget
	if opts.stdout {
		targets = append(targets, session.StdoutTarget{Writer: out})
	} else {
		targets = append(targets, session.FileTarget{
			Dir:     cfg.OutputDir,
			Pattern: cfg.FileNamePattern,
			OnSaved: func(path string) { fmt.Fprintln(out, path) },
		})
	}
	if opts.clipboard {
		targets = append(targets, session.ClipboardTarget{})
	}
	if len(targets) == 1 {
		return targets[0]
	}
	return targets
}

func runCapture(ctx context.Context, out io.Writer, cfg *config.Config, opts cliOptions) error {
	a := app.NewWithID(appID)
	selector := overlay.NewSelector(a, surface.Config{Shape: cfg.RegionShape, QuickCrop: cfg.QuickCrop})

	sessionOpts := session.Options{
		SelectRegion: selector.Select,
		Target:       captureTarget(out, cfg, opts),
	}
	if !opts.noWatermark {
		sessionOpts.Watermark = watermark.NewManager(cfg.Watermark)
	}

	var saved string
	sessionOpts.Target = recordSaved(sessionOpts.Target, &saved)

	errCh := make(chan error, 1)
	go func() {
		_, err := session.Execute(ctx, sessionOpts)
		errCh <- err
		fyne.DoAndWait(func() {
			if opts.notify {
				notifyResult(notification.Fyne{App: a}, saved, err)
			}
			a.Quit()
		})
	}()
	a.Run()
	return <-errCh
}

// recordSaved makes every file target in t also store the written path in saved.
func recordSaved(t session.ResultTarget, saved *string) session.ResultTarget {
	switch t := t.(type) {
	case session.FileTarget:
		onSaved := t.OnSaved
		t.OnSaved = func(path string) {
			*saved = path
			if onSaved != nil {
				onSaved(path)
			}
		}
		return t
	case session.MultiTarget:
		out := make(session.MultiTarget, len(t))
		for i, inner := range t {
			out[i] = recordSaved(inner, saved)
		}
		return out
	}
	return t
}

// notifyResult reports how a capture ended. Cancelled selections are silent.
func notifyResult(n notification.Notifier, saved string, err error) {
	switch {
	case errors.Is(err, session.ErrSelectionCancelled):
	case err != nil:
		notification.Failed(n, err)
	case saved != "":
		notification.Saved(n, saved)
	}
}

func runWatch(ctx context.Context, out io.Writer, cfg *config.Config, dir string, opts cliOptions) error {
	live := watermark.NewLive(cfg.Watermark)
	pool := worker.New(cfg.WatermarkWorkers, live)
	defer pool.Close()

	if cfg.WatermarkConfigPath != "" {
		go func() {
			if err := config.Watch(ctx, cfg.WatermarkConfigPath, live.Reconfigure); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: watermark config will not reload: %v\n", err)
			}
		}()
	}

	var mu sync.Mutex
	return watchfolder.Run(ctx, watchfolder.Options{
		Dir:       dir,
		OutputDir: opts.outputDir,
		Settle:    opts.settle,
		Pool:      pool,
		OnDone: func(src, dst string, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s: %v\n", src, err)
				return
			}
			fmt.Fprintln(out, dst)
		},
	})
}
