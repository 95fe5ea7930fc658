package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/hylla/tablero/internal/adapters/storage/postgres"
	"github.com/hylla/tablero/internal/adapters/storage/redis"
	"github.com/hylla/tablero/internal/adapters/storage/sqlite"
	"github.com/hylla/tablero/internal/app"
	"github.com/hylla/tablero/internal/config"
	"github.com/hylla/tablero/internal/domain"
	"github.com/hylla/tablero/internal/drag"
	"github.com/hylla/tablero/internal/platform"
	"github.com/hylla/tablero/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	root := newRootCommand(os.Stdout, os.Stderr, platform.Environ())
	if err := fang.Execute(context.Background(), root, fang.WithVersion(version), fang.WithNotifySignal(os.Interrupt)); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the global flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	backend    string
	devMode    bool
	env        map[string]string
}

// newRootCommand wires the CLI. With no subcommand it runs the board TUI.
func newRootCommand(stdout, stderr io.Writer, env map[string]string) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	opts := &rootOptions{env: env}

	defaultApp := platform.DefaultAppName
	if v := strings.TrimSpace(env[platform.EnvAppName]); v != "" {
		defaultApp = v
	}
	defaultDev := version == "dev"
	if v, ok := parseBool(env[platform.EnvDevMode]); ok {
		defaultDev = v
	}

	root := &cobra.Command{
		Use:           "tablero",
		Short:         "A three-column task board for the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.StringVar(&opts.backend, "backend", "", "storage backend override (sqlite, redis, postgres)")
	flags.BoolVar(&opts.devMode, "dev", defaultDev, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		pathsCommand(opts, stdout),
		exportCommand(opts, stdout, stderr),
		importCommand(opts, stderr),
		showCommand(opts, stdout, stderr),
		resetCommand(opts, stdout, stderr),
	)
	return root
}

// pathsCommand prints resolved locations.
func pathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", paths.AppName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			return nil
		},
	}
}

// exportCommand writes the stored board as a snapshot document.
func exportCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board snapshot as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, stderr, "export", func(ctx context.Context, rt *runtime) error {
				encoded, err := app.EncodeSnapshot(rt.svc.ExportSnapshot(ctx))
				if err != nil {
					return fmt.Errorf("encode snapshot: %w", err)
				}
				encoded = append(encoded, '\n')
				if outPath == "-" {
					if _, err := stdout.Write(encoded); err != nil {
						return fmt.Errorf("write snapshot to stdout: %w", err)
					}
					return nil
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				rt.logger.Info("snapshot exported", "path", outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

// importCommand replaces the stored board with a snapshot document.
func importCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the board with a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			content, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			snap, err := app.DecodeSnapshot(content)
			if err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}
			return withRuntime(cmd.Context(), opts, stderr, "import", func(ctx context.Context, rt *runtime) error {
				if err := rt.svc.ImportSnapshot(ctx, snap); err != nil {
					return fmt.Errorf("import snapshot: %w", err)
				}
				rt.logger.Info("snapshot imported", "path", inPath, "tasks", rt.svc.Board().Len())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	return cmd
}

// showCommand prints the board as rendered markdown.
func showCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var (
		width int
		plain bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, stderr, "show", func(ctx context.Context, rt *runtime) error {
				doc := tui.BoardMarkdown(rt.svc.Board())
				savedAt, saved, err := rt.store.SavedAt(ctx)
				if err != nil {
					rt.logger.Warn("snapshot timestamp unavailable", "err", err)
				}
				if saved {
					doc += "\n_saved " + savedAt.Local().Format(time.DateTime) + "_\n"
				}
				if !plain {
					doc = tui.RenderMarkdown(doc, width)
				}
				_, err = fmt.Fprintln(stdout, doc)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "wrap width for rendered output")
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown")
	return cmd
}

// resetCommand restores seed data, or removes the stored snapshot with --purge.
func resetCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the seed board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, stderr, "reset", func(ctx context.Context, rt *runtime) error {
				if purge {
					removed, err := rt.store.Purge(ctx)
					for _, key := range removed {
						_, _ = fmt.Fprintf(stdout, "removed %s\n", key)
					}
					if err != nil {
						return fmt.Errorf("purge snapshot: %w", err)
					}
					if len(removed) == 0 {
						_, _ = fmt.Fprintf(stdout, "nothing stored under %s\n", rt.store.Key())
					}
					return nil
				}
				if err := rt.svc.Reset(ctx); err != nil {
					return fmt.Errorf("reset board: %w", err)
				}
				_, _ = fmt.Fprintln(stdout, "board reset to seed data")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "delete the stored snapshot and keys nested under it instead of writing seed data")
	return cmd
}

// runTUI runs the interactive board.
func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	return withRuntime(ctx, opts, stderr, "", func(ctx context.Context, rt *runtime) error {
		m := tui.NewModel(
			rt.svc,
			tui.WithLayout(tui.Layout(rt.cfg.Board.Layout)),
			tui.WithThresholds(drag.Thresholds{
				Left:  rt.cfg.Focus.LeftThreshold,
				Right: rt.cfg.Focus.RightThreshold,
			}),
		)
		rt.logger.Info("starting tui program loop")
		if _, err := programFactory(m).Run(); err != nil {
			rt.logger.Error("tui program terminated with error", "err", err)
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
}

// resolvePaths resolves platform paths with env and flag overrides applied.
func (o *rootOptions) resolvePaths() (platform.Paths, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
	if err != nil {
		return platform.Paths{}, err
	}
	paths = paths.WithOverrides(o.env)
	if v := strings.TrimSpace(o.configPath); v != "" {
		paths.ConfigPath = v
	}
	if v := strings.TrimSpace(o.dbPath); v != "" {
		paths.DBPath = v
		paths.DataDir = filepath.Dir(v)
	}
	return paths, nil
}

// loadConfig resolves the effective config for one invocation.
func (o *rootOptions) loadConfig(paths platform.Paths) (config.Config, error) {
	cfg, err := config.Load(paths.ConfigPath, config.Default(paths.DBPath))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %q: %w", paths.ConfigPath, err)
	}
	if strings.TrimSpace(o.dbPath) != "" || strings.TrimSpace(o.env[platform.EnvDBPath]) != "" {
		cfg.Storage.Path = paths.DBPath
	}
	if v := strings.TrimSpace(o.backend); v != "" {
		cfg.Storage.Backend = config.Backend(strings.ToLower(v))
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// kvBackend is a key-value store the process owns and must close.
type kvBackend interface {
	app.KVStore
	Close() error
}

// runtime bundles everything one command needs.
type runtime struct {
	paths  platform.Paths
	cfg    config.Config
	logger *runtimeLogger
	kv     kvBackend
	store  *app.SnapshotStore
	svc    *app.Service
}

// withRuntime opens storage, loads the board and runs fn. command is empty
// for the TUI, which mutes the console sink and writes snapshots in the background.
func withRuntime(ctx context.Context, opts *rootOptions, stderr io.Writer, command string, fn func(context.Context, *runtime) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	paths, err := opts.resolvePaths()
	if err != nil {
		return err
	}
	cfg, err := opts.loadConfig(paths)
	if err != nil {
		return err
	}
	if err := config.EnsureConfigDir(paths.ConfigPath); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	logger, err := newRuntimeLogger(stderr, paths.AppName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	interactive := command == ""
	if interactive {
		logger.SetConsoleEnabled(false)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && !interactive {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()
	if command == "" {
		command = "tui"
	}

	logger.Info("startup configuration resolved", "app", paths.AppName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", paths.ConfigPath, "data_dir", paths.DataDir, "db_path", paths.DBPath)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	kv, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		logger.Error("storage open failed", "backend", cfg.Storage.Backend, "err", err)
		return err
	}
	defer func() {
		if closeErr := kv.Close(); closeErr != nil {
			logger.Warn("storage close failed", "backend", cfg.Storage.Backend, "err", closeErr)
		}
	}()
	logger.Info("storage ready", "backend", cfg.Storage.Backend, "key", cfg.Storage.Key)

	defs, err := columnDefs(cfg.Board.Columns)
	if err != nil {
		return err
	}
	store := app.NewSnapshotStore(kv, cfg.Storage.Key)
	svc := app.NewService(store, nil, app.ServiceConfig{
		Columns:    defs,
		Logger:     logger.ServiceLogger(),
		SyncWrites: !interactive,
	})
	defer func() {
		if closeErr := svc.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.Warn("board service close failed", "err", closeErr)
		}
	}()

	source, err := svc.Load(ctx)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}
	logger.Info("board loaded", "source", source, "tasks", svc.Board().Len())

	rt := &runtime{paths: paths, cfg: cfg, logger: logger, kv: kv, store: store, svc: svc}
	logger.Info("command flow start", "command", command)
	if err := fn(ctx, rt); err != nil {
		logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	logger.Info("command flow complete", "command", command)
	return nil
}

// openBackend opens the configured key-value store.
func openBackend(ctx context.Context, cfg config.StorageConfig) (kvBackend, error) {
	switch config.Backend(strings.ToLower(strings.TrimSpace(string(cfg.Backend)))) {
	case config.BackendSQLite:
		repo, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		return repo, nil
	case config.BackendRedis:
		store, err := redis.Open(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil
	case config.BackendPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// columnDefs maps configured columns onto board column definitions.
func columnDefs(in []config.ColumnConfig) ([]domain.ColumnDef, error) {
	out := make([]domain.ColumnDef, 0, len(in))
	for _, col := range in {
		def, err := domain.NewColumnDef(col.ID, col.Name)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.ID, err)
		}
		out = append(out, def)
	}
	return out, nil
}

// parseBool parses input into a normalized form.
func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
