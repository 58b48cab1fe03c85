package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abhisek/olive/internal/config"
	"github.com/abhisek/olive/internal/llm"
	"github.com/abhisek/olive/internal/logger"
	"github.com/abhisek/olive/internal/quiz"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/store"
	"github.com/abhisek/olive/internal/tutor"
)

// logTarget says where a command's logs go.
type logTarget int

const (
	// logToStderr suits commands that print little else.
	logToStderr logTarget = iota
	// logToFile keeps the terminal clean for the TUI.
	logToFile
)

// runtime is what every command that touches learner data needs.
type runtime struct {
	cfg      config.Config
	store    *store.Store
	logger   *log.Logger
	closeLog func() error
}

// setup loads configuration, builds the logger and opens the store.
func setup(cmd *cobra.Command, target logTarget) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	opts := logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Prefix: "olive"}
	if target == logToFile && opts.File == "" {
		dir, err := store.DataDir()
		if err != nil {
			return nil, err
		}
		opts.File = filepath.Join(dir, "olive.log")
	}
	lg, closeLog, err := logger.New(opts)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open store: %w", err)
	}
	lg.Debug("store opened", "path", dbPath)

	return &runtime{cfg: cfg, store: st, logger: lg, closeLog: closeLog}, nil
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn("close store", "err", err)
	}
	r.closeLog()
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then OLIVE_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// resolveUser picks the learner: --user, then OLIVE_USER, then the most
// recently active profile.
func (r *runtime) resolveUser(ctx context.Context, cmd *cobra.Command) (string, error) {
	requested, _ := cmd.Flags().GetString("user")
	if requested == "" {
		requested = r.cfg.User
	}
	id, err := r.store.ResolveUser(ctx, requested)
	if err != nil {
		return "", fmt.Errorf("resolve learner: %w", err)
	}
	return id, nil
}

// openSession resolves the learner and loads their session.
func (r *runtime) openSession(ctx context.Context, cmd *cobra.Command) (*session.Session, error) {
	userID, err := r.resolveUser(ctx, cmd)
	if err != nil {
		return nil, err
	}
	sess := session.New(userID, r.store.Learner(userID), r.logger.With("user", userID))
	sess.Load(ctx)
	return sess, nil
}

// services builds the tutor and quiz generator on top of the configured
// provider. offline reports whether the offline provider is in use.
func (r *runtime) services(ctx context.Context, cmd *cobra.Command) (h *tutor.Handler, q *quiz.Generator, offline bool, err error) {
	var provider llm.Provider
	quizCfg := quiz.DefaultConfig()

	useOffline, _ := cmd.Flags().GetBool("offline")
	if useOffline {
		cfg := llm.DefaultConfig()
		cfg.Provider = "mock"
		p, err := llm.NewProvider(ctx, cfg, r.store.EventRepo(), r.logger)
		if err != nil {
			return nil, nil, false, err
		}
		provider = p
		offline = true
	} else {
		p, llmCfg, err := llm.NewProviderFromEnv(ctx, r.store.EventRepo(), r.logger)
		if err != nil {
			var cfgErr *llm.ConfigError
			if errors.As(err, &cfgErr) {
				return nil, nil, false, fmt.Errorf("%w\nset an API key (see olive --help) or run with --offline", err)
			}
			return nil, nil, false, fmt.Errorf("llm provider: %w", err)
		}
		provider = p
		quizCfg.Model = llmCfg.QuizModelID()
		offline = llmCfg.Provider == "mock"
		r.logger.Info("llm provider ready", "provider", llmCfg.Provider, "model", provider.ModelID())
	}

	tutorCfg := tutor.DefaultConfig()
	tutorCfg.HistoryWindow = r.cfg.HistoryWindow
	return tutor.New(provider, tutorCfg, r.logger), quiz.NewGenerator(provider, quizCfg), offline, nil
}

