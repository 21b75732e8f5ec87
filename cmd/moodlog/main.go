package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"moodlog/internal/app"
	"moodlog/internal/config"
	"moodlog/internal/mood"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file at the default path.
func loadConfig() (*config.Config, string, error) {
	paths, err := app.DefaultPaths()
	if err != nil {
		return nil, "", fmt.Errorf("resolving paths: %w", err)
	}

	cfg, err := config.ReadFromFile(paths.ConfigPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, paths.ConfigPath, nil
}

// newApp reads the config and creates a MoodApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "AddEntry", "Import").
func newApp(ctx context.Context, operation string) (*app.MoodApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewMoodApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// informational turns the sentinels that describe a no-op into a message.
func informational(err error) (string, bool) {
	switch {
	case errors.Is(err, mood.ErrNothingToExport):
		return "Nothing to export.", true
	case errors.Is(err, mood.ErrNothingToUndo):
		return "Nothing to undo.", true
	}
	return "", false
}

func warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format, args...)
}

var rootCmd = &cobra.Command{
	Use:          "moodlog",
	Short:        "Offline mood tracker",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to resolve paths: %w", err)
		}

		cfg := paths.NewConfig()
		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if err := app.ValidateExportSink(cmd.Context(), cfg); err != nil {
			warnf("warning: %v\n", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Exports:  %s\n", cfg.Export.Dir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Settings:   %s %s\n", cfg.Settings.Type, cfg.Settings.Dir)
		switch cfg.Export.Type {
		case "s3":
			fmt.Printf("Export:     s3://%s/%s\n", cfg.Export.S3Bucket, cfg.Export.S3Prefix)
		default:
			fmt.Printf("Export:     %s %s\n", cfg.Export.Type, cfg.Export.Dir)
		}
		fmt.Printf("Encryption: %v\n", cfg.Encryption.Enabled)

		a, err := app.NewMoodApp(cmd.Context(), cfg, "ConfigList")
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()

		if keys := a.SettingKeys(); len(keys) > 0 {
			fmt.Printf("\nStored settings: %s\n", strings.Join(keys, ", "))
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate the encryption key pair for exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		pass, err := readNewPassphrase()
		if err != nil {
			return err
		}

		if err := app.SetupEncryptionKeys(cfg, pass); err != nil {
			return err
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		if !cfg.Encryption.Enabled {
			fmt.Printf("Set enabled = true under [encryption] in %s to encrypt exports.\n", path)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)

	rootCmd.AddCommand(configCmd)
}
