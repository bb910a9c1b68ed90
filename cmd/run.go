package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/agents"
	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/observability"
	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/pipeline"
)

// newRunCmd creates the `run` command, which executes the configured agent
// chain over one or more template files.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [templates...]",
		Short: "Runs the agent pipeline over the given PHP template files",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind set flags to their viper keys so CLI flags override
			// config file and environment values. Unset flags are left
			// unbound so their zero defaults never shadow configured values.
			bindings := map[string]string{
				"pipeline.agent_order":       "agents",
				"pipeline.base_dir":          "base-dir",
				"pipeline.state_file":        "state-file",
				"pipeline.batch_concurrency": "concurrency",
			}
			for key, name := range bindings {
				flag := cmd.Flags().Lookup(name)
				if flag == nil || !flag.Changed {
					continue
				}
				if err := viper.BindPFlag(key, flag); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			registry := agents.NewRegistry(cfg)
			chain, err := registry.Resolve(cfg.Pipeline.AgentOrder)
			if err != nil {
				return err
			}

			store := pipeline.NewStateStore(cfg.Pipeline.StateFile, logger)
			runner, err := pipeline.NewRunner(chain, store, cfg.Pipeline.BaseDir, logger)
			if err != nil {
				return err
			}

			logger.Info("Starting pipeline batch",
				zap.Int("templates", len(args)),
				zap.Strings("agents", cfg.Pipeline.AgentOrder),
				zap.Int("concurrency", cfg.Pipeline.BatchConcurrency),
			)

			states, err := runner.RunBatch(ctx, args, cfg.Pipeline.BatchConcurrency)
			for _, state := range states {
				if state == nil {
					continue
				}
				fmt.Printf("pipeline %s: %s\n", state.PipelineID, state.Status)
			}
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Pipeline batch aborted")
					return fmt.Errorf("pipeline batch aborted by user signal")
				}
				return err
			}
			return nil
		},
	}

	runCmd.Flags().StringSlice("agents", nil, "agent ids to run, in order")
	runCmd.Flags().String("base-dir", "", "base directory for pipeline output")
	runCmd.Flags().String("state-file", "", "pipeline state file path")
	runCmd.Flags().Int("concurrency", 0, "max pipelines running at once")
	return runCmd
}
