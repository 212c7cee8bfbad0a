package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"storefront/pagegen/internal/config"
	"storefront/pagegen/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Registers storefront pages from a store's static paths",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		log.Info("Configuration loaded successfully")
		return cfg, nil
	}

	rootCmd.AddCommand(
		routesCmd(loadConfig),
		buildCmd(loadConfig),
		workerCmd(loadConfig),
		serveCmd(loadConfig),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Application exited with error: %v", err)
	}
}

type configLoader func() (*config.Config, error)

func routesCmd(load configLoader) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Fetch static paths and print the page registration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			app, err := container.NewOffline(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize container: %w", err)
			}

			registration, _, err := app.Service.Registration(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(registration); err != nil {
				return fmt.Errorf("failed to write registration: %w", err)
			}

			if out != "" {
				log.Infof("✅ Wrote %d pages to %s", len(registration.Pages), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the registration to a file instead of stdout")
	return cmd
}

func buildCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Run a registration pass and publish it to the workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), load, (*container.Container).Build)
		},
	}
}

func workerCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Persist published registrations until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), load, (*container.Container).RunWorkers)
		},
	}
}

func serveCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Resolve request paths against the persisted registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), load, (*container.Container).Serve)
		},
	}
}

func withContainer(ctx context.Context, load configLoader, run func(*container.Container, context.Context) error) error {
	cfg, err := load()
	if err != nil {
		return err
	}

	app, err := container.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	return run(app, ctx)
}
