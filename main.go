package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Zachkp/termfolio/internal/analytics"
	"github.com/Zachkp/termfolio/internal/config"
	"github.com/Zachkp/termfolio/internal/content"
	"github.com/Zachkp/termfolio/internal/terminal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := newServeCmd(&configPath)
	root := &cobra.Command{
		Use:   "termfolio",
		Short: "Hacker-terminal portfolio",
		Long:  "termfolio serves a portfolio site driven by a fake shell, or runs the same shell locally.",
		// Bare invocation serves the site
		RunE:          serve.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (or TERMFOLIO_CONFIG)")

	root.AddCommand(serve)
	root.AddCommand(newShellCmd(&configPath))
	root.AddCommand(newTUICmd(&configPath))
	return root
}

// loadContent reads config and the portfolio copy shared by every command.
// With watching enabled the copy reloads until ctx is done.
func loadContent(ctx context.Context, configPath string) (config.Config, *content.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	store, err := content.NewStore(cfg.ContentFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if cfg.WatchContent && store.Path() != "" {
		log.Printf("Watching %s for content changes", store.Path())
		if err := store.Watch(ctx, 250*time.Millisecond); err != nil {
			log.Printf("Content watching disabled: %v", err)
		}
	}
	return cfg, store, nil
}

// localSession builds the interpreter and session options for the shell and tui hosts.
func localSession(cfg config.Config, store *content.Store) (*terminal.Interpreter, *terminal.RouteTable, []terminal.SessionOption) {
	routes := terminal.DefaultRoutes()
	interp := terminal.NewInterpreter(routes).WithIdentity(store.Portfolio().Identity())
	return interp, routes, []terminal.SessionOption{terminal.WithRevealFor(cfg.Terminal.RevealFor)}
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio site",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := loadContent(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			gin.SetMode(cfg.GinMode)

			stats, err := analytics.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer stats.Close()

			srv, err := newServer(cfg, store, stats)
			if err != nil {
				return err
			}
			return srv.run(cmd.Context())
		},
	}
}

func newShellCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse the portfolio from a line shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := loadContent(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			interp, routes, opts := localSession(cfg, store)
			h := newShellHost(store, interp, routes, opts...)
			h.out = cmd.OutOrStdout()
			defer h.sess.Close()
			return runShell(h)
		},
	}
}

func newTUICmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the portfolio full screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := loadContent(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if !isTerminal() {
				return errors.New("tui needs an interactive terminal; try `termfolio shell`")
			}
			interp, routes, opts := localSession(cfg, store)
			return runTUI(newTUIModel(store, interp, routes, opts...))
		},
	}
}
