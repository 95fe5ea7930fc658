package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/hylla/tablero/internal/adapters/storage/sqlite"
	"github.com/hylla/tablero/internal/app"
	"github.com/hylla/tablero/internal/config"
	"github.com/hylla/tablero/internal/platform"
	"github.com/hylla/tablero/internal/tui"
)

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	model tea.Model
	err   error
}

// Run runs the requested command flow.
func (p fakeProgram) Run() (tea.Model, error) {
	return p.model, p.err
}

// isolateEnv points platform path resolution at temp dirs.
func isolateEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("HOME", root)
	return root
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, env map[string]string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr, env)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// TestPathsCommand verifies path resolution with flag and env overrides.
func TestPathsCommand(t *testing.T) {
	root := isolateEnv(t)

	out, _, err := runCLI(t, nil, "--app", "demo", "--dev=false", "paths")
	if err != nil {
		t.Fatalf("paths error = %v", err)
	}
	for _, want := range []string{
		"app: demo\n",
		"dev_mode: false\n",
		"config: " + filepath.Join(root, "config", "demo", "config.toml"),
		"db: " + filepath.Join(root, "data", "demo", "demo.db"),
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output\n%s", want, out)
		}
	}

	dbPath := filepath.Join(root, "elsewhere", "board.db")
	env := map[string]string{
		platform.EnvAppName: "envapp",
		platform.EnvDevMode: "true",
		platform.EnvDBPath:  dbPath,
	}
	out, _, err = runCLI(t, env, "paths")
	if err != nil {
		t.Fatalf("paths error = %v", err)
	}
	for _, want := range []string{"app: envapp-dev\n", "dev_mode: true\n", "db: " + dbPath} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output\n%s", want, out)
		}
	}
}

// TestExportImportShowRoundTrip verifies the snapshot commands against sqlite.
func TestExportImportShowRoundTrip(t *testing.T) {
	root := isolateEnv(t)
	dbPath := filepath.Join(root, "board.db")
	base := []string{"--dev=false", "--db", dbPath}

	out, _, err := runCLI(t, nil, append(base, "export")...)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	snap, err := app.DecodeSnapshot([]byte(out))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v\n%s", err, out)
	}
	if got := len(snap.Columns["todo"]); got != 2 {
		t.Fatalf("expected seed todo column in export, got %d tasks", got)
	}

	importPath := filepath.Join(root, "in.json")
	doc := `{"todo":[],"proceso":[{"id":"x1","text":"Migrar datos","completed":false}],"done":[{"id":"x2","text":"Escribir tests","completed":true}]}`
	if err := os.WriteFile(importPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, _, err := runCLI(t, nil, append(base, "import", "--in", importPath)...); err != nil {
		t.Fatalf("import error = %v", err)
	}

	out, _, err = runCLI(t, nil, append(base, "show", "--plain")...)
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	for _, want := range []string{"## Por hacer (0)", "- [ ] Migrar datos", "- [x] Escribir tests", "_saved "} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in show output\n%s", want, out)
		}
	}

	outPath := filepath.Join(root, "exports", "board.json")
	if _, _, err := runCLI(t, nil, append(base, "export", "--out", outPath)...); err != nil {
		t.Fatalf("export --out error = %v", err)
	}
	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), `"x1"`) {
		t.Fatalf("expected imported task in export file\n%s", content)
	}
}

// TestImportRequiresInput verifies missing and malformed import files are rejected.
func TestImportRequiresInput(t *testing.T) {
	root := isolateEnv(t)
	dbPath := filepath.Join(root, "board.db")

	if _, _, err := runCLI(t, nil, "--dev=false", "--db", dbPath, "import"); err == nil || !strings.Contains(err.Error(), "--in is required") {
		t.Fatalf("expected --in error, got %v", err)
	}
	bad := filepath.Join(root, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"todo": 3}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, _, err := runCLI(t, nil, "--dev=false", "--db", dbPath, "import", "--in", bad); err == nil {
		t.Fatal("expected decode error")
	}
}

// TestResetCommand verifies reset writes seed data and --purge removes the key.
func TestResetCommand(t *testing.T) {
	root := isolateEnv(t)
	dbPath := filepath.Join(root, "board.db")
	base := []string{"--dev=false", "--db", dbPath}

	out, _, err := runCLI(t, nil, append(base, "reset")...)
	if err != nil {
		t.Fatalf("reset error = %v", err)
	}
	if !strings.Contains(out, "board reset to seed data") {
		t.Fatalf("unexpected reset output %q", out)
	}
	if !hasStoredSnapshot(t, dbPath) {
		t.Fatal("expected reset to store a snapshot")
	}

	nested := app.DefaultSnapshotKey + ".archive"
	putRaw(t, dbPath, nested, "{}")
	putRaw(t, dbPath, "unrelated", "{}")

	out, _, err = runCLI(t, nil, append(base, "reset", "--purge")...)
	if err != nil {
		t.Fatalf("reset --purge error = %v", err)
	}
	want := "removed " + app.DefaultSnapshotKey + "\nremoved " + nested + "\n"
	if out != want {
		t.Fatalf("unexpected purge output %q, want %q", out, want)
	}
	if hasStoredSnapshot(t, dbPath) {
		t.Fatal("expected purge to delete the snapshot")
	}

	out, _, err = runCLI(t, nil, append(base, "reset", "--purge")...)
	if err != nil {
		t.Fatalf("second reset --purge error = %v", err)
	}
	if !strings.Contains(out, "nothing stored under "+app.DefaultSnapshotKey) {
		t.Fatalf("unexpected empty purge output %q", out)
	}
	repo, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	defer func() { _ = repo.Close() }()
	if _, err := repo.Get(context.Background(), "unrelated"); err != nil {
		t.Fatalf("expected unrelated key to survive purge, got %v", err)
	}
}

// putRaw writes one key straight into the sqlite file.
func putRaw(t *testing.T, dbPath, key, value string) {
	t.Helper()
	repo, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	defer func() { _ = repo.Close() }()
	if err := repo.Put(context.Background(), key, []byte(value)); err != nil {
		t.Fatalf("Put(%q) error = %v", key, err)
	}
}

// hasStoredSnapshot reports whether the sqlite file holds the board key.
func hasStoredSnapshot(t *testing.T, dbPath string) bool {
	t.Helper()
	repo, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	defer func() { _ = repo.Close() }()
	_, found, err := app.NewSnapshotStore(repo, app.DefaultSnapshotKey).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return found
}

// TestRunTUILaunchesModel verifies the default command builds a model from config and keeps the console quiet.
func TestRunTUILaunchesModel(t *testing.T) {
	root := isolateEnv(t)
	dbPath := filepath.Join(root, "board.db")
	cfgPath := filepath.Join(root, "tablero.toml")
	cfg := "[board]\nlayout = \"columns\"\n\n[focus]\nleft_threshold = 0.2\nright_threshold = 0.8\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	var ran tea.Model
	programFactory = func(m tea.Model) program {
		ran = m
		return fakeProgram{model: m}
	}

	_, stderr, err := runCLI(t, nil, "--dev=false", "--db", dbPath, "--config", cfgPath)
	if err != nil {
		t.Fatalf("tui error = %v", err)
	}
	if _, ok := ran.(tui.Model); !ok {
		t.Fatalf("expected tui.Model, got %T", ran)
	}
	if strings.Contains(stderr, "starting tui program loop") {
		t.Fatalf("expected console sink muted while the board runs\n%s", stderr)
	}
}

// TestRunTUIProgramError verifies program failures surface.
func TestRunTUIProgramError(t *testing.T) {
	root := isolateEnv(t)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(m tea.Model) program {
		return fakeProgram{model: m, err: context.Canceled}
	}

	_, _, err := runCLI(t, nil, "--dev=false", "--db", filepath.Join(root, "board.db"))
	if err == nil || !strings.Contains(err.Error(), "run tui program") {
		t.Fatalf("expected program error, got %v", err)
	}
}

// TestRunRejectsInvalidConfig verifies config and backend validation.
func TestRunRejectsInvalidConfig(t *testing.T) {
	root := isolateEnv(t)
	dbPath := filepath.Join(root, "board.db")

	cfgPath := filepath.Join(root, "bad.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"verbose\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, _, err := runCLI(t, nil, "--dev=false", "--db", dbPath, "--config", cfgPath, "show"); err == nil {
		t.Fatal("expected invalid logging level error")
	}

	if _, _, err := runCLI(t, nil, "--dev=false", "--db", dbPath, "--backend", "mongo", "show"); err == nil {
		t.Fatal("expected unsupported backend error")
	}
	if _, _, err := runCLI(t, nil, "--dev=false", "--db", dbPath, "--backend", "postgres", "show"); err == nil {
		t.Fatal("expected missing postgres dsn error")
	}
}

// TestRunDevModeCreatesWorkspaceLogFile verifies dev mode writes a logfmt file.
func TestRunDevModeCreatesWorkspaceLogFile(t *testing.T) {
	root := isolateEnv(t)
	workspace := filepath.Join(root, "ws")
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(workspace, "go.mod"), []byte("module example.com/ws\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Chdir(workspace)

	if _, _, err := runCLI(t, nil, "--dev", "--db", filepath.Join(root, "board.db"), "show", "--plain"); err != nil {
		t.Fatalf("show error = %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(workspace, ".tablero", "log"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "tablero-dev-") {
		t.Fatalf("expected one dev log file, got %v", entries)
	}
	content, err := os.ReadFile(filepath.Join(workspace, ".tablero", "log", entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "board loaded") {
		t.Fatalf("expected board load event in dev log\n%s", content)
	}
}

// TestWorkspaceRootFromUsesNearestMarker verifies behavior for the covered scenario.
func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "tablero")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

// TestDevLogFilePath verifies absolute dirs and file naming.
func TestDevLogFilePath(t *testing.T) {
	dir := t.TempDir()
	got, err := devLogFilePath(dir, "my app/x", time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	want := filepath.Join(dir, "my-app-x-20260222.log")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := sanitizeLogFileStem(" / "); got != platform.DefaultAppName {
		t.Fatalf("expected fallback stem, got %q", got)
	}
}

// TestRuntimeLoggerCanMuteConsoleSink verifies the console toggle and service sink choice.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/tablero.db").Logging

	logger, err := newRuntimeLogger(&console, "tablero", false, cfg, func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.ServiceLogger().Warn("hidden")
	logger.SetConsoleEnabled(true)
	logger.Info("after")
	logger.ServiceLogger().Warn("visible")

	out := console.String()
	for _, want := range []string{"before", "after", "visible"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected console log to include %q, got %q", want, out)
		}
	}
	for _, unwanted := range []string{"during", "hidden"} {
		if strings.Contains(out, unwanted) {
			t.Fatalf("expected muted console to drop %q, got %q", unwanted, out)
		}
	}
	if logger.DevLogPath() != "" {
		t.Fatalf("expected no dev log outside dev mode")
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
