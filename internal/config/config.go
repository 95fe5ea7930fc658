package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

type Layout string

const (
	LayoutTabs    Layout = "tabs"
	LayoutColumns Layout = "columns"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Board   BoardConfig   `toml:"board"`
	Focus   FocusConfig   `toml:"focus"`
	Logging LoggingConfig `toml:"logging"`
}

type StorageConfig struct {
	Backend     Backend `toml:"backend"`
	Path        string  `toml:"path"`
	RedisAddr   string  `toml:"redis_addr"`
	PostgresDSN string  `toml:"postgres_dsn"`
	Key         string  `toml:"key"`
}

type BoardConfig struct {
	Columns []ColumnConfig `toml:"columns"`
	Layout  Layout         `toml:"layout"`
}

type ColumnConfig struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// FocusConfig holds the viewport fractions that switch the visible column
// while a card is dragged toward a screen edge.
type FocusConfig struct {
	LeftThreshold  float64 `toml:"left_threshold"`
	RightThreshold float64 `toml:"right_threshold"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: "todo", Name: "Por hacer"},
		{ID: "proceso", Name: "En proceso"},
		{ID: "done", Name: "Hecho"},
	}
}

func Default(dbPath string) Config {
	return Config{
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			Path:      dbPath,
			RedisAddr: "127.0.0.1:6379",
			Key:       "tablero.board",
		},
		Board: BoardConfig{
			Columns: defaultColumns(),
			Layout:  LayoutTabs,
		},
		Focus: FocusConfig{
			LeftThreshold:  0.25,
			RightThreshold: 0.75,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".tablero/log",
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch Backend(strings.TrimSpace(strings.ToLower(string(c.Storage.Backend)))) {
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("storage.path is required for the sqlite backend")
		}
	case BackendRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return errors.New("storage.redis_addr is required for the redis backend")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.PostgresDSN) == "" {
			return errors.New("storage.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key is required")
	}

	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seen := map[string]struct{}{}
	for idx, col := range c.Board.Columns {
		id := strings.TrimSpace(strings.ToLower(col.ID))
		if id == "" {
			return fmt.Errorf("board.columns[%d].id is required", idx)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, id)
		}
		// "version" marks a snapshot envelope, so a column by that name could not round-trip.
		if id == "version" {
			return fmt.Errorf("board.columns[%d].id is reserved: %s", idx, id)
		}
		seen[id] = struct{}{}
	}
	switch Layout(strings.TrimSpace(strings.ToLower(string(c.Board.Layout)))) {
	case LayoutTabs, LayoutColumns:
	default:
		return fmt.Errorf("invalid board.layout: %q", c.Board.Layout)
	}

	if l := c.Focus.LeftThreshold; l <= 0 || l > 0.5 {
		return fmt.Errorf("focus.left_threshold must be in (0, 0.5], got %v", l)
	}
	if r := c.Focus.RightThreshold; r < 0.5 || r >= 1 {
		return fmt.Errorf("focus.right_threshold must be in [0.5, 1), got %v", r)
	}

	if _, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev_file is enabled")
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
