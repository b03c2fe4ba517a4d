package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"github.com/spf13/cobra"

	"screen-mirror/src/clipboard"
	"screen-mirror/src/config"
	"screen-mirror/src/cursor"
	"screen-mirror/src/edge"
	"screen-mirror/src/eventloop"
	"screen-mirror/src/gui"
	"screen-mirror/src/hotkey"
	"screen-mirror/src/logutil"
	"screen-mirror/src/notification"
	"screen-mirror/src/platform"
	"screen-mirror/src/pointer"
	"screen-mirror/src/render"
	"screen-mirror/src/runtimeinit"
	"screen-mirror/src/screenshot"
	"screen-mirror/src/session"
	"screen-mirror/src/singleinstance"
	"screen-mirror/src/tray"
)

const appTitle = "Screen Mirror"

type mainOptions struct {
	backend    string
	monitor    int
	cursor     string
	resolution string
	hidden     bool
	send       string
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		notification.ShowBlockingError(appTitle, err.Error())
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-mirror"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-mirror",
		Short:         "Mirror a display into a window, controlled from the tray",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.backend, "backend", "", "Capture backend: auto, native or grim (default from config)")
	cmd.Flags().IntVar(&opts.monitor, "monitor", -1, "Display index to mirror (0-based, default from config)")
	cmd.Flags().StringVar(&opts.cursor, "cursor", "", "Cursor preset: "+strings.Join(cursor.PresetNames(), ", "))
	cmd.Flags().StringVar(&opts.resolution, "resolution", "", "Mirror resolution: "+strings.Join(render.Resolutions(), ", "))
	cmd.Flags().BoolVar(&opts.hidden, "hidden", false, "Start in the tray without mirroring")
	cmd.Flags().StringVar(&opts.send, "send", "", "Send show, start, stop, toggle or quit to the running instance and exit")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr regardless of configuration")

	return cmd
}

func runWithOptions(opts mainOptions) error {
	base, err := config.Load()
	if err != nil {
		return err
	}
	ports := singleinstance.PortRange{Start: base.PortStart, End: base.PortEnd}
	if delegated, err := delegate(singleinstance.NewClient(ports), opts.send); delegated || err != nil {
		return err
	}

	// Ensure DPI awareness before creating any windows or querying metrics
	platform.EnableDPIAwareness()

	loadOptions := config.LoadOptions{BackendOverride: opts.backend}
	if opts.monitor >= 0 {
		loadOptions.MonitorOverride = &opts.monitor
	}
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:   loadOptions,
		SetupLogging:  setupLogging(opts.verbose),
		RequireIcon:   true,
		InitClipboard: true,
	})
	if err != nil {
		return err
	}
	cfg := rt.Config
	platform.LogDisplays(rt.Displays)

	resolution := cfg.Resolution
	if opts.resolution != "" {
		resolution = opts.resolution
	}
	sess, err := session.New(session.Options{
		Displays:   rt.Displays,
		Target:     screenshot.MonitorTarget(cfg.Monitor),
		Cursor:     pickCursor(opts.cursor, cfg.CursorPreset),
		Edge:       edge.DefaultParams(),
		Resolution: resolution,
	})
	if err != nil {
		return err
	}

	a := gui.NewApp()
	notifier := notification.New(a)
	mirror := gui.NewImageWindow(a, appTitle, fyne.NewSize(960, 540), nil)

	renderer, err := render.New(render.Options{
		Name:    "mirror",
		Source:  rt.Source,
		Target:  sess.Target,
		Process: sess.MirrorProcess(pointer.Robot{}),
		Surface: mirror,
		Period:  cfg.MirrorInterval,
	})
	if err != nil {
		return err
	}
	defer renderer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var loop *eventloop.Loop
	trayIcon, err := tray.New(tray.Config{
		Title:    appTitle,
		Tooltip:  tooltip(cfg.Hotkey),
		Icon:     rt.Icon,
		Displays: screenshot.List(rt.Displays),
		Post:     func(ev eventloop.Event) bool { return loop.Post(ev) },
		OnExit:   cancel,
	})
	if err != nil {
		return err
	}

	var copyImage func(image.Image) error
	if rt.ClipboardReady {
		copyImage = clipboard.WriteImage
	}
	loop, err = eventloop.New(eventloop.Options{
		Session:   sess,
		Displays:  rt.Displays,
		Renderer:  renderer,
		UI:        gui.NewUI(a, mirror, rt.Source),
		Tray:      trayIcon,
		CopyImage: copyImage,
		Notify:    notifier.Notify,
		Tooltip:   tooltip(cfg.Hotkey),
	})
	if err != nil {
		return err
	}

	srv := singleinstance.NewServer(ports)
	if err := srv.Start(ctx); err != nil {
		log.Printf("Single-instance endpoint unavailable, continuing: %v", err)
	} else {
		defer srv.Close()
		go serveDelegates(ctx, srv, loop.Post)
	}

	go trayIcon.Run()
	defer trayIcon.Destroy()

	if cfg.Hotkey != "" {
		err := hotkey.Listen(ctx, cfg.Hotkey, func() {
			loop.Post(eventloop.Event{Action: eventloop.ActionToggle})
		})
		if err != nil {
			log.Printf("Hotkey disabled: %v", err)
		}
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			loop.Post(eventloop.Event{Action: eventloop.ActionQuit})
		case <-ctx.Done():
		}
	}()

	go func() {
		if err := loop.Run(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("event loop stopped: %v", err)
			}
			fyne.Do(a.Quit)
		}
	}()

	if !opts.hidden {
		loop.Post(eventloop.Event{Action: eventloop.ActionStart})
	}
	log.Printf("%s running, mirroring %s every %v", appTitle, sess.Target(), cfg.MirrorInterval)

	a.Run()
	return nil
}

// delegate hands send (default: show) to a running instance. It reports
// whether this process should exit.
func delegate(client singleinstance.Client, send string) (bool, error) {
	cmd := singleinstance.CommandShow
	if send != "" {
		c, err := singleinstance.ParseCommand(send)
		if err != nil {
			return true, err
		}
		cmd = c
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	delegated, err := client.Delegate(ctx, cmd)
	if err != nil {
		return true, fmt.Errorf("running instance rejected %s: %w", cmd, err)
	}
	if delegated {
		log.Printf("Delegated %s to running instance", cmd)
		return true, nil
	}
	if send != "" {
		return true, fmt.Errorf("no running instance to receive %s", cmd)
	}
	return false, nil
}

var commandActions = map[singleinstance.Command]eventloop.Action{
	singleinstance.CommandShow:   eventloop.ActionShowWindow,
	singleinstance.CommandStart:  eventloop.ActionStart,
	singleinstance.CommandStop:   eventloop.ActionStop,
	singleinstance.CommandToggle: eventloop.ActionToggle,
	singleinstance.CommandQuit:   eventloop.ActionQuit,
}

func serveDelegates(ctx context.Context, srv singleinstance.Server, post func(eventloop.Event) bool) {
	for {
		conn, err := srv.Next(ctx)
		if err != nil {
			return
		}
		action, ok := commandActions[conn.Command()]
		switch {
		case !ok:
			_ = conn.RespondError("unsupported command")
		case post(eventloop.Event{Action: action}):
			_ = conn.RespondSuccess()
		default:
			_ = conn.RespondError("busy, try again")
		}
		_ = conn.Close()
	}
}

func setupLogging(verbose bool) func(*config.Config) {
	return func(cfg *config.Config) {
		if verbose {
			logutil.Setup(logutil.Options{})
			return
		}
		logutil.Setup(logutil.Options{EnableFileLogging: cfg.EnableFileLogging, Path: cfg.LogFile})
	}
}

// pickCursor resolves the flag, then the configured preset, then the default.
func pickCursor(flagPreset, configPreset string) cursor.Settings {
	for _, name := range []string{flagPreset, configPreset} {
		if name == "" {
			continue
		}
		if s, ok := cursor.Preset(name); ok {
			return s
		}
		log.Printf("Unknown cursor preset %q, ignoring", name)
	}
	return cursor.DefaultSettings()
}

func tooltip(hotkey string) string {
	if hotkey == "" {
		return appTitle
	}
	return fmt.Sprintf("%s - Press %s to start or stop", appTitle, hotkey)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	long := []string{"backend", "monitor", "cursor", "resolution", "hidden", "send", "verbose"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
