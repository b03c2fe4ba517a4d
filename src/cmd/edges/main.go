package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"fyne.io/fyne/v2"
	"github.com/spf13/cobra"

	"screen-mirror/src/config"
	"screen-mirror/src/edge"
	"screen-mirror/src/gui"
	"screen-mirror/src/logutil"
	"screen-mirror/src/notification"
	"screen-mirror/src/overlay"
	"screen-mirror/src/platform"
	"screen-mirror/src/render"
	"screen-mirror/src/runtimeinit"
	"screen-mirror/src/screenshot"
	"screen-mirror/src/session"
)

type edgesOptions struct {
	backend  string
	monitor  int
	region   string
	lower    int
	upper    int
	aperture int
	contours bool
	verbose  bool
}

func main() {
	if err := run(); err != nil {
		notification.ShowBlockingError("Edge overlay", err.Error())
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args)
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"mirror-edges"}
	}

	opts := &edgesOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *edgesOptions) *cobra.Command {
	defaults := edge.DefaultParams()
	cmd := &cobra.Command{
		Use:           "mirror-edges",
		Short:         "Select a screen area and watch its edges live",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.backend, "backend", "", "Capture backend: auto, native or grim (default from config)")
	cmd.Flags().IntVar(&opts.monitor, "monitor", -1, "Display to select on (0-based, default from config)")
	cmd.Flags().StringVar(&opts.region, "region", "", `Skip selection and watch "X,Y WxH"`)
	cmd.Flags().IntVar(&opts.lower, "lower", defaults.Lower, "Initial lower threshold (0-255)")
	cmd.Flags().IntVar(&opts.upper, "upper", defaults.Upper, "Initial upper threshold (0-255)")
	cmd.Flags().IntVar(&opts.aperture, "aperture", defaults.ApertureIndex, "Initial aperture index: 0=3, 1=5, 2=7")
	cmd.Flags().BoolVar(&opts.contours, "contours", false, "Start with contour outlines on")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr regardless of configuration")

	return cmd
}

func (o edgesOptions) params() edge.Params {
	return edge.Params{Lower: o.lower, Upper: o.upper, ApertureIndex: o.aperture, ShowContours: o.contours}.Normalize()
}

func runWithOptions(opts edgesOptions) error {
	platform.EnableDPIAwareness()

	loadOptions := config.LoadOptions{BackendOverride: opts.backend}
	if opts.monitor >= 0 {
		loadOptions.MonitorOverride = &opts.monitor
	}
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: loadOptions,
		SetupLogging: func(cfg *config.Config) {
			if opts.verbose {
				logutil.Setup(logutil.Options{})
				return
			}
			logutil.Setup(logutil.Options{EnableFileLogging: cfg.EnableFileLogging, Path: cfg.LogFile})
		},
	})
	if err != nil {
		return err
	}
	cfg := rt.Config

	var initial *screenshot.Region
	if opts.region != "" {
		r, err := screenshot.ParseRegion(opts.region)
		if err != nil {
			return err
		}
		initial = &r
	}

	sess, err := session.New(session.Options{
		Displays: rt.Displays,
		Target:   screenshot.MonitorTarget(cfg.Monitor),
		Edge:     opts.params(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := gui.NewApp()
	selector := &gui.AreaSelector{App: a, Source: rt.Source, Monitor: cfg.Monitor}

	var (
		view     *gui.ImageWindow
		renderer *render.Loop
		watching atomic.Bool
	)
	watch := func(r screenshot.Region) {
		sess.SetTarget(screenshot.RegionTarget(r))
		watching.Store(true)
		renderer.Start(ctx)
		fyne.Do(func() { view.Window().SetTitle(windowTitle(r)) })
		view.Show()
	}
	selectArea := func() {
		go func() {
			if !selectOnce(ctx, selector, watch) && !watching.Load() {
				// Nothing to watch: the first selection was cancelled.
				fyne.Do(a.Quit)
			}
		}()
	}

	view = gui.NewImageWindow(a, "Edges", fyne.NewSize(800, 600), gui.NewEdgeControls(sess, selectArea))
	view.Window().SetCloseIntercept(func() {
		cancel()
		a.Quit()
	})

	renderer, err = render.New(render.Options{
		Name:    "edges",
		Source:  rt.Source,
		Target:  sess.Target,
		Process: sess.EdgeProcess(edge.NewProcessor(cfg.ContourEpsilon)),
		Surface: view,
		Period:  cfg.EdgeInterval,
	})
	if err != nil {
		return err
	}
	defer renderer.Close()

	a.Lifecycle().SetOnStarted(func() {
		if initial != nil {
			go watch(*initial)
			return
		}
		selectArea()
	})

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			cancel()
			fyne.Do(a.Quit)
		case <-ctx.Done():
		}
	}()

	a.Run()
	return nil
}

// selectOnce runs the selector and hands a confirmed region to watch. It
// reports whether a region was selected.
func selectOnce(ctx context.Context, sel overlay.Selector, watch func(screenshot.Region)) bool {
	region, cancelled, err := sel.Select(ctx)
	switch {
	case err != nil:
		log.Printf("Area selection failed: %v", err)
		return false
	case cancelled:
		log.Printf("Area selection cancelled")
		return false
	}
	log.Printf("Area selected: %s", region)
	watch(region)
	return true
}

func windowTitle(r screenshot.Region) string {
	return fmt.Sprintf("Edges - %s", strings.ReplaceAll(r.Geometry(), " ", " @ "))
}
