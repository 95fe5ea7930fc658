package platform

import (
	"path/filepath"
	"testing"
)

func TestPathsForPerOS(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		env        map[string]string
		config     string
		data       string
		wantConfig string
		wantDB     string
	}{
		{
			name:       "linux xdg",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			config:     "/fallback/config",
			data:       "/fallback/data",
			wantConfig: filepath.Join("/xdg/config", "tablero", "config.toml"),
			wantDB:     filepath.Join("/xdg/data", "tablero", "tablero.db"),
		},
		{
			name:       "linux without xdg",
			goos:       "linux",
			env:        map[string]string{},
			config:     "/home/me/.config",
			data:       "/home/me/.local/share",
			wantConfig: filepath.Join("/home/me/.config", "tablero", "config.toml"),
			wantDB:     filepath.Join("/home/me/.local/share", "tablero", "tablero.db"),
		},
		{
			name:       "windows appdata",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`},
			config:     `C:\fallback\config`,
			data:       `C:\fallback\data`,
			wantConfig: filepath.Join(`C:\Roaming`, "tablero", "config.toml"),
			wantDB:     filepath.Join(`C:\Local`, "tablero", "tablero.db"),
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored"},
			config:     "/Users/me/Library/Application Support",
			data:       "/Users/me/Library/Application Support",
			wantConfig: filepath.Join("/Users/me/Library/Application Support", "tablero", "config.toml"),
			wantDB:     filepath.Join("/Users/me/Library/Application Support", "tablero", "tablero.db"),
		},
		{
			name:       "unknown os",
			goos:       "freebsd",
			env:        nil,
			config:     "/cfg",
			data:       "/data",
			wantConfig: filepath.Join("/cfg", "tablero", "config.toml"),
			wantDB:     filepath.Join("/data", "tablero", "tablero.db"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PathsFor(tt.goos, tt.env, tt.config, tt.data, "tablero")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			if p.ConfigPath != tt.wantConfig {
				t.Fatalf("unexpected config path %q", p.ConfigPath)
			}
			if p.DBPath != tt.wantDB {
				t.Fatalf("unexpected db path %q", p.DBPath)
			}
			if p.DataDir != filepath.Dir(tt.wantDB) {
				t.Fatalf("unexpected data dir %q", p.DataDir)
			}
		})
	}
}

func TestPathsForRejectsEmptyInputs(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "tablero"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := PathsFor("darwin", nil, "/c", "/d", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

func TestWithOverrides(t *testing.T) {
	p, err := PathsFor("linux", nil, "/c", "/d", "tablero")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	same := p.WithOverrides(map[string]string{EnvConfigPath: "  "})
	if same != p {
		t.Fatalf("blank overrides must be ignored, got %#v", same)
	}
	got := p.WithOverrides(map[string]string{
		EnvConfigPath: "/etc/tablero.toml",
		EnvDBPath:     "/var/lib/board/main.db",
	})
	if got.ConfigPath != "/etc/tablero.toml" || got.ConfigDir() != "/etc" {
		t.Fatalf("unexpected config override %#v", got)
	}
	if got.DBPath != "/var/lib/board/main.db" || got.DataDir != "/var/lib/board" {
		t.Fatalf("unexpected db override %#v", got)
	}
}

func TestDefaultPathsSmoke(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.ConfigPath == "" || p.DBPath == "" || p.DataDir == "" || p.AppName != DefaultAppName {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
}

func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "tablero", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "tablero-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "tablero-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}
