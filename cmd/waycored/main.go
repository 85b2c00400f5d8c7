// Command waycored runs the compositor core as a standalone process: the
// wire listener, the dispatch loop per client, and a synthetic
// presentation ticker standing in for a real display's vsync signal when
// no renderer backend is wired (§6, §9).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wlhost/waycore/internal/compositor"
	"github.com/wlhost/waycore/internal/config"
	"github.com/wlhost/waycore/internal/logging"
	"github.com/wlhost/waycore/internal/outputs"
	"github.com/wlhost/waycore/internal/wire"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "waycored",
		Short: "Wayland compositor core",
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		socketName string
		tcpAddr    string
		logPretty  bool
		frameRate  int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the compositor, accepting client connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath, socketName, tcpAddr, logPretty, frameRate)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML settings file, hot-reloaded while running")
	cmd.Flags().StringVar(&socketName, "socket-name", "", "override the Wayland socket name (defaults to wayland-0 or the config file's value)")
	cmd.Flags().StringVar(&tcpAddr, "tcp-addr", "", "additionally listen on this TCP address (off by default, see DESIGN.md)")
	cmd.Flags().BoolVar(&logPretty, "log-pretty", false, "use a human-readable console log writer instead of JSON lines")
	cmd.Flags().IntVar(&frameRate, "frame-rate", 60, "synthetic presentation ticker rate when no renderer backend drives it")
	return cmd
}

func serve(configPath, socketName, tcpAddr string, logPretty bool, frameRate int) error {
	live, err := config.Watch(configPath, zerolog.Nop())
	if err != nil {
		return fmt.Errorf("waycored: loading config: %w", err)
	}
	defer live.Close()

	level, err := zerolog.ParseLevel(live.Get().LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logging.New(os.Stderr, level, logPretty)

	cfg := live.Get()
	if socketName != "" {
		cfg.SocketName = socketName
	}
	if tcpAddr != "" {
		cfg.TCPAddr = tcpAddr
	}

	l, err := wire.Listen(cfg.RuntimeDir, cfg.SocketName, cfg.TCPAddr)
	if err != nil {
		return fmt.Errorf("waycored: listening: %w", err)
	}
	defer l.Close()
	log.Info().Str("socket", l.SocketPath()).Msg("waycored: listening")

	defaultOutput := outputs.Output{
		WidthPx: 1920, HeightPx: 1080, WidthMM: 520, HeightMM: 290,
		Make: "waycore", Model: "virtual-0", RefreshMilliHz: 60000, Scale: 1,
	}
	d := compositor.New(live, log, nil, nil, []outputs.Output{defaultOutput})

	stop := make(chan struct{})
	go presentationLoop(d, frameRate, stop)
	go watchdogLoop(d, stop)
	defer close(stop)

	return d.Serve(l)
}

// presentationLoop stands in for a real display's vsync signal (§4.8);
// each tick fires every surface's armed frame callback exactly once.
func presentationLoop(d *compositor.Display, frameRate int, stop <-chan struct{}) {
	if frameRate <= 0 {
		frameRate = 60
	}
	t := time.NewTicker(time.Second / time.Duration(frameRate))
	defer t.Stop()
	start := time.Now()
	for {
		select {
		case <-t.C:
			d.Scheduler.Fire(uint32(time.Since(start).Milliseconds()))
		case <-stop:
			return
		}
	}
}

func watchdogLoop(d *compositor.Display, stop <-chan struct{}) {
	t := time.NewTicker(2 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			d.Xdg.CheckWatchdog()
		case <-stop:
			return
		}
	}
}
