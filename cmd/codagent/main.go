package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codagent/internal/app"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	flagConfig  string
	flagModel   string
	flagBaseURL string
	flagMock    bool
)

func main() {
	root := &cobra.Command{
		Use:     "codagent",
		Short:   "Interactive coding assistant for your project directory",
		Long:    "codagent is an interactive CLI assistant. It proposes file edits and shell commands as tagged blocks, previews every change as a diff, and applies nothing without your confirmation.\n\nMention files with @path to include their content, or @codebase for the file listing.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				cancel()
			}()

			configPath := flagConfig
			if configPath == "" {
				configPath = app.DefaultConfigPath()
			}
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if flagModel != "" {
				cfg.Model = flagModel
			}
			if flagBaseURL != "" {
				cfg.BaseURL = flagBaseURL
			}
			if cfg.APIKey == "" {
				cfg.APIKey = os.Getenv("CODAGENT_API_KEY")
			}
			if v := os.Getenv("CODAGENT_BASE_URL"); v != "" && flagBaseURL == "" {
				cfg.BaseURL = v
			}

			var gen app.Generator
			if flagMock {
				gen = &app.ScriptedGenerator{Responses: []string{
					"Mock mode: no model is connected. Set CODAGENT_API_KEY to talk to a real one.\n[END]",
				}}
			} else {
				if cfg.APIKey == "" {
					return fmt.Errorf("no API key: set CODAGENT_API_KEY or api_key in %s", configPath)
				}
				gen = app.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens)
			}

			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			logger := app.NewFileLogger()
			logger.Info("session starting", map[string]any{"model": cfg.Model, "dir": dir, "mock": flagMock})

			session := app.NewSession(cfg, gen, logger, dir, os.Stdin, os.Stdout)
			return session.Run(ctx)
		},
	}

	root.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to config file")
	root.Flags().StringVarP(&flagModel, "model", "m", "", "Override the configured model")
	root.Flags().StringVar(&flagBaseURL, "base-url", "", "Override the configured API endpoint")
	root.Flags().BoolVar(&flagMock, "mock", false, "Run without an API key using canned replies")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
