// Package config loads the engine's settings file, applies environment
// overrides, and hot-reloads the subset of fields safe to change without
// restarting the listener socket (§2, supplemented).
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/wlhost/waycore/internal/xdgshell"
)

// Config is the engine's settings, loaded from YAML and overridable by
// WAYCORE_-prefixed environment variables (envconfig's convention).
type Config struct {
	RuntimeDir string `yaml:"runtime_dir" envconfig:"RUNTIME_DIR"`
	SocketName string `yaml:"socket_name" envconfig:"SOCKET_NAME"`
	TCPAddr    string `yaml:"tcp_addr" envconfig:"TCP_ADDR"`

	// MultipleClients toggles whether more than one client may connect at
	// once (Open Question: resolved in DESIGN.md — evaluated per accept,
	// not frozen at startup, so toggling it live takes effect on the next
	// connection attempt without needing a listener restart).
	MultipleClients bool `yaml:"multiple_clients" envconfig:"MULTIPLE_CLIENTS"`

	// StallTimeout is how long a client's outbound queue may sit above
	// wire.HighWatermark before the dispatch loop disconnects it (§5).
	StallTimeout time.Duration `yaml:"stall_timeout" envconfig:"STALL_TIMEOUT"`

	// ConfigureWatchdog is loaded and reloaded with the rest of the file,
	// but nothing reads it: xdgshell.Manager.CheckWatchdog always uses the
	// xdgshell.ConfigureWatchdogTimeout constant.
	ConfigureWatchdog time.Duration `yaml:"configure_watchdog" envconfig:"CONFIGURE_WATCHDOG"`

	// ForceServerSideDecoration pins every toplevel's default decoration
	// mode regardless of client preference (§9, supplemented: a
	// settings-driven decoration policy the original window-manager
	// integration exposed and the distilled spec dropped).
	ForceServerSideDecoration bool `yaml:"force_server_side_decoration" envconfig:"FORCE_SERVER_SIDE_DECORATION"`

	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// Default returns the engine's built-in defaults before any file or
// environment overrides are applied.
func Default() Config {
	return Config{
		RuntimeDir:        os.Getenv("XDG_RUNTIME_DIR"),
		SocketName:        "wayland-0",
		MultipleClients:   true,
		StallTimeout:       5 * time.Second,
		ConfigureWatchdog: xdgshell.ConfigureWatchdogTimeout,
		LogLevel:          "info",
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides — the precedence order envconfig's docs recommend
// (file first, then env, since operators expect `WAYCORE_*` to win).
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	if err := envconfig.Process("waycore", &cfg); err != nil {
		return cfg, fmt.Errorf("config: applying environment overrides: %w", err)
	}
	return cfg, nil
}

// Live wraps a Config with fsnotify-driven hot-reload of the fields safe to
// change post-startup (§2: "force-server-side and the stall/watchdog
// timeouts without restarting the listener socket").
type Live struct {
	mu   sync.RWMutex
	cfg  Config
	path string
	log  zerolog.Logger

	watcher *fsnotify.Watcher
}

// Watch loads path once and begins watching it for changes; path == ""
// disables hot-reload and Get always returns the initial snapshot.
func Watch(path string, log zerolog.Logger) (*Live, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	l := &Live{cfg: cfg, path: path, log: log.With().Str("component", "config").Logger()}
	if path == "" {
		return l, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: creating watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config: watching %s: %w", path, err)
	}
	l.watcher = w
	go l.watchLoop()
	return l, nil
}

func (l *Live) watchLoop() {
	for {
		select {
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			next, err := Load(l.path)
			if err != nil {
				l.log.Warn().Err(err).Msg("config: reload failed, keeping previous settings")
				continue
			}
			l.mu.Lock()
			prev := l.cfg
			l.cfg = next
			l.mu.Unlock()
			l.log.Info().
				Bool("force_server_side_decoration", next.ForceServerSideDecoration).
				Dur("stall_timeout", next.StallTimeout).
				Dur("configure_watchdog", next.ConfigureWatchdog).
				Msg("config reloaded")
			_ = prev
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.log.Warn().Err(err).Msg("config: watcher error")
		}
	}
}

// Get returns the current snapshot.
func (l *Live) Get() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// DecorationPolicy adapts the live force-server-side-decoration toggle to
// xdgshell.DecorationPolicy.
func (l *Live) DecorationPolicy() xdgshell.DecorationMode {
	if l.Get().ForceServerSideDecoration {
		return xdgshell.DecorationServerSide
	}
	return xdgshell.DecorationClientSide
}

// Close stops the watcher goroutine, if any.
func (l *Live) Close() error {
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
