package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasklanes.db"
	DefaultLogName        = "tasklanes.log"
	DefaultSlot           = "tasks"
	DefaultStatusDelay    = "300ms"
	DefaultLogLevel       = "info"
	appDir                = "tasklanes"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Left      string `toml:"left"`
	Right     string `toml:"right"`
	Toggle    string `toml:"toggle"`
	Sort      string `toml:"sort"`
	Search    string `toml:"search"`
	Edit      string `toml:"edit"`
	Delete    string `toml:"delete"`
	NextField string `toml:"next_field"`
	Save      string `toml:"save"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
}

type Config struct {
	DBPath      string `toml:"db_path"`
	Slot        string `toml:"slot"`
	StatusDelay string `toml:"status_delay"`
	LogPath     string `toml:"log_path"`
	LogLevel    string `toml:"log_level"`
	Keys        Keymap `toml:"keys"`
}

// ResolveConfigPath picks the config file location: $TASKLANES_CONFIG, then
// the XDG config dir, then ~/.config.
func ResolveConfigPath() string {
	if p := os.Getenv("TASKLANES_CONFIG"); p != "" {
		return p
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfigFileName
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDir, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist. Environment overrides are applied to the result
// but never written back.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()
	applyEnv(&cfg)
	fillDefaults(&cfg, filepath.Dir(path))
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKLANES_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TASKLANES_SLOT"); v != "" {
		cfg.Slot = v
	}
	if v := os.Getenv("TASKLANES_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKLANES_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
}

// fillDefaults restores values an older or hand-edited file left blank.
func fillDefaults(cfg *Config, dir string) {
	def := Default(dir)
	if cfg.DBPath == "" {
		cfg.DBPath = def.DBPath
	}
	if cfg.StatusDelay == "" {
		cfg.StatusDelay = def.StatusDelay
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	k, d := &cfg.Keys, def.Keys
	for _, pair := range []struct {
		dst *string
		def string
	}{
		{&k.Quit, d.Quit}, {&k.Add, d.Add}, {&k.Up, d.Up}, {&k.Down, d.Down},
		{&k.Left, d.Left}, {&k.Right, d.Right}, {&k.Toggle, d.Toggle},
		{&k.Sort, d.Sort}, {&k.Search, d.Search}, {&k.Edit, d.Edit},
		{&k.Delete, d.Delete}, {&k.NextField, d.NextField}, {&k.Save, d.Save},
		{&k.Confirm, d.Confirm}, {&k.Cancel, d.Cancel},
	} {
		if *pair.dst == "" {
			*pair.dst = pair.def
		}
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Slot) == "" {
		return errors.New("config: slot must not be empty")
	}
	d, err := time.ParseDuration(c.StatusDelay)
	if err != nil {
		return fmt.Errorf("config: status_delay: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("config: status_delay %s is negative", c.StatusDelay)
	}
	return nil
}

// Delay is the parsed status_delay. Invalid values fall back to the default.
func (c Config) Delay() time.Duration {
	d, err := time.ParseDuration(c.StatusDelay)
	if err != nil || d < 0 {
		d, _ = time.ParseDuration(DefaultStatusDelay)
	}
	return d
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default is the configuration written on first launch, with files kept in dir.
func Default(dir string) Config {
	return Config{
		DBPath:      filepath.Join(dir, DefaultDBName),
		Slot:        DefaultSlot,
		StatusDelay: DefaultStatusDelay,
		LogPath:     filepath.Join(dir, DefaultLogName),
		LogLevel:    DefaultLogLevel,
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Up:        "k",
			Down:      "j",
			Left:      "h",
			Right:     "l",
			Toggle:    " ",
			Sort:      "s",
			Search:    "/",
			Edit:      "e",
			Delete:    "d",
			NextField: "tab",
			Save:      "ctrl+s",
			Confirm:   "enter",
			Cancel:    "esc",
		},
	}
}
