package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories.
const DefaultAppName = "tablero"

// Environment overrides honoured by WithOverrides.
const (
	EnvConfigPath = "TABLERO_CONFIG"
	EnvDBPath     = "TABLERO_DB_PATH"
	EnvAppName    = "TABLERO_APP_NAME"
	EnvDevMode    = "TABLERO_DEV_MODE"
)

// Paths are the resolved on-disk locations for one app name.
type Paths struct {
	AppName    string
	ConfigPath string
	DataDir    string
	DBPath     string
}

// ConfigDir returns the directory holding ConfigPath.
func (p Paths) ConfigDir() string {
	return filepath.Dir(p.ConfigPath)
}

// WithOverrides replaces the config and database paths with the
// TABLERO_CONFIG and TABLERO_DB_PATH values from env, when set.
func (p Paths) WithOverrides(env map[string]string) Paths {
	if v := strings.TrimSpace(env[EnvConfigPath]); v != "" {
		p.ConfigPath = v
	}
	if v := strings.TrimSpace(env[EnvDBPath]); v != "" {
		p.DBPath = v
		p.DataDir = filepath.Dir(v)
	}
	return p
}

// Options defines optional settings for configuration.
type Options struct {
	AppName string
	DevMode bool
}

// baseEnv lists, per GOOS, the env vars that replace the config and data bases.
var baseEnv = map[string][2]string{
	"linux":   {"XDG_CONFIG_HOME", "XDG_DATA_HOME"},
	"windows": {"APPDATA", "LOCALAPPDATA"},
}

// DefaultPaths returns default paths.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions resolves paths for the running OS and user.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	switch runtime.GOOS {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			dataDir = v
		}
	}

	return PathsFor(runtime.GOOS, Environ(), configDir, dataDir, appName)
}

// PathsFor resolves paths from explicit inputs so callers can test every OS.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}

	configBase, dataBase := userConfigDir, userDataDir
	if keys, ok := baseEnv[goos]; ok {
		if v := env[keys[0]]; v != "" {
			configBase = v
		}
		if v := env[keys[1]]; v != "" {
			dataBase = v
		}
	}

	appDataDir := filepath.Join(dataBase, appName)
	return Paths{
		AppName:    appName,
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    appDataDir,
		DBPath:     filepath.Join(appDataDir, appName+".db"),
	}, nil
}

// Environ snapshots the env vars this package reads.
func Environ() map[string]string {
	keys := []string{
		"XDG_CONFIG_HOME", "XDG_DATA_HOME", "APPDATA", "LOCALAPPDATA",
		EnvConfigPath, EnvDBPath, EnvAppName, EnvDevMode,
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = os.Getenv(k)
	}
	return out
}
