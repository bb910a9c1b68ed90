package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/config"
	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/observability"
)

var cfgFile string

// NewRootCommand builds a fresh root command tree. A new instance per
// execution keeps flag state from leaking between runs.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "templatepipe",
		Short:        "Templatepipe runs optimization agents over PHP templates.",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Runs before any command, setting up config and logging.
			if err := initializeConfig(); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				// Fall back to a usable logger so the error is visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "templatepipe"})
				return err
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting templatepipe", zap.String("version", Version))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newRunCmd())
	root.AddCommand(newOptimizeCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command with the given signal-aware context.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		return err
	}
	return nil
}

// initializeConfig reads in the config file and environment variables.
func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())

	viper.SetEnvPrefix("TEMPLATEPIPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}
	return nil
}

// loadConfig unmarshals and validates the effective configuration.
func loadConfig() (*config.Config, error) {
	return config.NewConfigFromViper(viper.GetViper())
}
