package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/observability"
	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/pipeline"
)

// newStatusCmd creates the `status` command, which prints persisted pipeline
// state, either one pipeline by id or all of them.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [pipeline-id]",
		Short: "Shows the state of recorded pipelines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store := pipeline.NewStateStore(cfg.Pipeline.StateFile, observability.GetLogger())

			if len(args) == 1 {
				state, err := store.Get(args[0])
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(state, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal pipeline state: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			states, err := store.List()
			if err != nil {
				return err
			}
			if len(states) == 0 {
				fmt.Println("No pipelines recorded.")
				return nil
			}
			for _, state := range states {
				fmt.Printf("%s  %-9s  %s\n", state.PipelineID, state.Status, state.RequestFile)
			}
			return nil
		},
	}
}
