// chatcv - a terminal client for my portfolio chatbot.
//
// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/barodev/chatcv-tui/internal/api"
	"github.com/barodev/chatcv-tui/internal/chat"
	"github.com/barodev/chatcv-tui/internal/cli"
	"github.com/barodev/chatcv-tui/internal/config"
	"github.com/barodev/chatcv-tui/internal/logging"
	"github.com/barodev/chatcv-tui/internal/orchestrator"
	"github.com/barodev/chatcv-tui/internal/session"
	"github.com/barodev/chatcv-tui/internal/store"
	chatui "github.com/barodev/chatcv-tui/internal/ui/chat"
	"github.com/barodev/chatcv-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd := "tui"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "tui":
		runTUI(cfg)
	case "chat":
		runREPL(cfg)
	case "history":
		runHistory(cfg)
	case "version", "--version", "-v":
		fmt.Printf("chatcv %s (%s, built %s)\n", Version, GitCommit, BuildDate)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: chatcv [command]

Commands:
  tui        full-screen chat interface (default)
  chat       line-oriented chat REPL
  history    list recent chats
  version    print version information`)
}

// =============================================================================
// SERVICE WIRING
// =============================================================================

// services is everything the presenters need, wired once per run.
type services struct {
	cfg    *config.Config
	logger *zap.Logger
	kv     store.KV
	store  *store.ConversationStore
	prefs  *store.Prefs
	orch   *orchestrator.Orchestrator
}

func buildServices(cfg *config.Config) (*services, error) {
	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, err
	}
	logger := logging.New(logging.Options{
		Path:       logPath,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}

	var kv store.KV
	switch cfg.Storage.Backend {
	case config.BackendFile:
		kv, err = store.OpenFileKV(dataDir)
	default:
		kv, err = store.OpenSQLiteKV(filepath.Join(dataDir, "chatcv.db"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	st := store.New(kv, logger)
	prefs := store.NewPrefs(kv, logger)
	state := chat.NewState(session.NewProvider(), st)
	client := api.NewClient(cfg.API.URL, logger)
	orch := orchestrator.New(state, st, prefs, client, logger)

	// Resume where the user left off: stored mode, then current chat.
	if mode := prefs.LastMode(); mode != "" {
		orch.ChangeMode(string(mode))
	} else if cfg.UI.DefaultMode != "" {
		orch.ChangeMode(cfg.UI.DefaultMode)
	}
	if id := st.CurrentID(); id != "" {
		orch.LoadChatFromHistory(id)
	}

	return &services{
		cfg:    cfg,
		logger: logger,
		kv:     kv,
		store:  st,
		prefs:  prefs,
		orch:   orch,
	}, nil
}

func (s *services) close() {
	s.logger.Sync()
	if err := s.kv.Close(); err != nil {
		s.logger.Warn("failed to close storage", zap.Error(err))
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func runTUI(cfg *config.Config) {
	svc, err := buildServices(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer svc.close()

	dark := styles.DetectDark()
	if svc.prefs.ThemeSet() {
		dark = svc.prefs.Theme() == store.ThemeDark
	}

	model := chatui.New(svc.orch, svc.prefs, styles.New(dark), chatui.Options{
		Markdown:       cfg.UI.Markdown,
		RecentLimit:    cfg.Storage.RecentLimit,
		RequestTimeout: time.Duration(cfg.API.TimeoutSecs) * time.Second,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		svc.logger.Error("tui crashed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runREPL(cfg *config.Config) {
	svc, err := buildServices(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer svc.close()

	repl := cli.NewREPL(svc.orch, cfg, os.Stdout)
	if err := repl.Run(context.Background()); err != nil {
		svc.logger.Error("repl failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runHistory(cfg *config.Config) {
	svc, err := buildServices(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer svc.close()

	cli.WriteHistory(os.Stdout, svc.store, cfg.Storage.RecentLimit)
}
