package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasks.db"
	DefaultJSONName       = "tasks.json"
	DefaultStorageKey     = "todo.tasks"
	DefaultBackend        = "sqlite"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "TASKLIST_CONFIG"
)

type Keymap struct {
	Quit            string `toml:"quit"`
	Add             string `toml:"add"`
	Up              string `toml:"up"`
	Down            string `toml:"down"`
	Toggle          string `toml:"toggle"`
	Delete          string `toml:"delete"`
	Confirm         string `toml:"confirm"`
	Cancel          string `toml:"cancel"`
	NextField       string `toml:"next_field"`
	CycleFilter     string `toml:"cycle_filter"`
	FilterAll       string `toml:"filter_all"`
	FilterPending   string `toml:"filter_pending"`
	FilterCompleted string `toml:"filter_completed"`
}

type Config struct {
	StorageKey    string `toml:"storage_key"`
	Backend       string `toml:"backend"`
	DBPath        string `toml:"db_path"`
	JSONPath      string `toml:"json_path"`
	DSN           string `toml:"dsn"`
	DefaultFilter string `toml:"default_filter"`
	LogPath       string `toml:"log_path"`
	LogLevel      string `toml:"log_level"`
	Keys          Keymap `toml:"keys"`
}

// ResolveConfigPath returns $TASKLIST_CONFIG when set, otherwise
// config.toml under the user config directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "tasklist", DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing defaults there first if the
// file does not exist. Relative storage paths resolve against the config
// file's directory.
func LoadOrCreate(path string) (Config, error) {
	dir := filepath.Dir(path)
	cfg := Default(dir)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.normalize(dir)
	return cfg, nil
}

func (c *Config) normalize(dir string) {
	def := Default(dir)
	if strings.TrimSpace(c.StorageKey) == "" {
		c.StorageKey = def.StorageKey
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	} else if !filepath.IsAbs(c.DBPath) && !strings.HasPrefix(c.DBPath, "file:") {
		c.DBPath = filepath.Join(dir, c.DBPath)
	}
	if c.JSONPath == "" {
		c.JSONPath = def.JSONPath
	} else if !filepath.IsAbs(c.JSONPath) {
		c.JSONPath = filepath.Join(dir, c.JSONPath)
	}
	c.DefaultFilter = strings.ToLower(strings.TrimSpace(c.DefaultFilter))
	if c.DefaultFilter == "" {
		c.DefaultFilter = def.DefaultFilter
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	c.Keys.fill(def.Keys)
}

func (k *Keymap) fill(def Keymap) {
	set := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	set(&k.Quit, def.Quit)
	set(&k.Add, def.Add)
	set(&k.Up, def.Up)
	set(&k.Down, def.Down)
	set(&k.Toggle, def.Toggle)
	set(&k.Delete, def.Delete)
	set(&k.Confirm, def.Confirm)
	set(&k.Cancel, def.Cancel)
	set(&k.NextField, def.NextField)
	set(&k.CycleFilter, def.CycleFilter)
	set(&k.FilterAll, def.FilterAll)
	set(&k.FilterPending, def.FilterPending)
	set(&k.FilterCompleted, def.FilterCompleted)
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration with storage files under dir.
func Default(dir string) Config {
	return Config{
		StorageKey:    DefaultStorageKey,
		Backend:       DefaultBackend,
		DBPath:        filepath.Join(dir, DefaultDBName),
		JSONPath:      filepath.Join(dir, DefaultJSONName),
		DefaultFilter: "all",
		LogLevel:      "info",
		Keys: Keymap{
			Quit:            "q",
			Add:             "a",
			Up:              "k",
			Down:            "j",
			Toggle:          " ",
			Delete:          "d",
			Confirm:         "enter",
			Cancel:          "esc",
			NextField:       "tab",
			CycleFilter:     "f",
			FilterAll:       "1",
			FilterPending:   "2",
			FilterCompleted: "3",
		},
	}
}
