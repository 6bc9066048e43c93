package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/auditlog"
	"github.com/cleared-dev/bankmint/internal/category"
	"github.com/cleared-dev/bankmint/internal/config"
	"github.com/cleared-dev/bankmint/internal/logger"
	"github.com/cleared-dev/bankmint/internal/service"
	"github.com/cleared-dev/bankmint/internal/store"
)

// app is the per-invocation wiring shared by the data commands.
type app struct {
	dataDir string
	cfg     *config.Config
	store   *store.Store
	svc     *service.Service
	log     zerolog.Logger
}

func newLogger(lc config.LoggingConfig, debug bool) (zerolog.Logger, error) {
	lvl, err := logger.ParseLevel(lc.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	if lc.Format == config.LogFormatJSON {
		return logger.NewWithWriter(os.Stderr).Level(lvl), nil
	}
	return logger.New(lvl), nil
}

// openApp loads configuration from the data directory, opens the store and
// attaches the logger to cmd's context. A project without bankmint.yaml runs
// on defaults.
func openApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	dataDir, err := filepath.Abs(flags.dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfgPath := filepath.Join(dataDir, config.FileName)
	cfg, err := config.Load(cfgPath)
	missing := errors.Is(err, fs.ErrNotExist)
	if missing {
		cfg = config.Default("")
	} else if err != nil {
		return nil, err
	}
	if err := config.LoadEnv(cfg, flags.envFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := newLogger(cfg.Logging, flags.debug)
	if err != nil {
		return nil, err
	}
	log = logger.WithFields(log, map[string]any{"command": cmd.Name()})
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	if missing {
		log.Debug().Str("path", cfgPath).Msg("no config file, using defaults")
	}

	catalog, err := category.Load(dataDir)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath(dataDir))
	if err != nil {
		return nil, err
	}
	log.Debug().Str("db", cfg.DBPath(dataDir)).Msg("store opened")

	svc := service.New(st, service.Options{
		Config:  cfg,
		Catalog: catalog,
		Audit:   auditlog.New(cfg.LogDir(dataDir)),
		Logger:  &log,
	})
	return &app{dataDir: dataDir, cfg: cfg, store: st, svc: svc, log: log}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
