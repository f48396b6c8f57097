package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/msalah0e/agviewer/internal/layout"
	"github.com/msalah0e/agviewer/internal/shortcut"
)

// Config holds agviewer configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Graph    GraphConfig    `toml:"graph"`
	Canvas   CanvasConfig   `toml:"canvas"`
	Parallel ParallelConfig `toml:"parallel"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig selects how queries reach the database.
type ServerConfig struct {
	Backend string     `toml:"backend"` // "http", "bolt"
	URL     string     `toml:"url"`
	Bolt    BoltConfig `toml:"bolt"`
}

// BoltConfig holds Bolt connection settings.
type BoltConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// GraphConfig describes the target graph.
type GraphConfig struct {
	Flavor      string `toml:"flavor"` // "AGE", "AGENS"
	Name        string `toml:"name"`
	MaxElements int    `toml:"max_elements"`
}

// CanvasConfig controls the canvas.
type CanvasConfig struct {
	Layout       string            `toml:"layout"`
	Width        float64           `toml:"width"`
	Height       float64           `toml:"height"`
	NodeCaptions map[string]string `toml:"node_captions"`
	EdgeCaptions map[string]string `toml:"edge_captions"`
}

// ParallelConfig controls concurrent exports.
type ParallelConfig struct {
	Concurrency int `toml:"concurrency"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Backends.
const (
	BackendHTTP = "http"
	BackendBolt = "bolt"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Backend: BackendHTTP,
			URL:     "http://localhost:3001",
			Bolt:    BoltConfig{URI: "neo4j://localhost:7687", User: "neo4j"},
		},
		Graph:    GraphConfig{Flavor: shortcut.FlavorAGE, Name: "demo_graph", MaxElements: 1000},
		Canvas:   CanvasConfig{Layout: "coseBilkent", Width: 1200, Height: 800},
		Parallel: ParallelConfig{Concurrency: 4},
		Log:      LogConfig{Level: "info"},
	}
}

// ConfigDir returns the agviewer config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "agviewer")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file over the defaults, then applies a .env file in
// the working directory and AGV_* environment overrides. A missing file is
// not an error.
func Load() *Config {
	cfg := Default()
	if data, err := os.ReadFile(Path()); err == nil {
		_ = toml.Unmarshal(data, cfg)
	}
	_ = godotenv.Load()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.URL, "AGV_SERVER_URL")
	set(&c.Server.Backend, "AGV_BACKEND")
	set(&c.Server.Bolt.URI, "AGV_BOLT_URI")
	set(&c.Server.Bolt.User, "AGV_BOLT_USER")
	set(&c.Server.Bolt.Password, "AGV_BOLT_PASSWORD")
	set(&c.Log.Level, "AGV_LOG_LEVEL")
	set(&c.Graph.Flavor, "AGV_GRAPH_FLAVOR")
	set(&c.Graph.Name, "AGV_GRAPH_NAME")
	if v := os.Getenv("AGV_MAX_ELEMENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Graph.MaxElements = n
		}
	}
}

// Validate rejects settings the rest of the program assumes are valid.
func (c *Config) Validate() error {
	if !layout.Known(c.Canvas.Layout) {
		return fmt.Errorf("unknown layout %q (known: %v)", c.Canvas.Layout, layout.Names())
	}
	switch c.Server.Backend {
	case BackendHTTP, BackendBolt:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Server.Backend, BackendHTTP, BackendBolt)
	}
	switch c.Graph.Flavor {
	case shortcut.FlavorAGE, shortcut.FlavorAGENS:
	default:
		return fmt.Errorf("unknown graph flavor %q", c.Graph.Flavor)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %vx%v", c.Canvas.Width, c.Canvas.Height)
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil // already exists
	}
	return Save(Default())
}
