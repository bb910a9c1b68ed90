package cmd

import (
	"fmt"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/StevenVC-P/phpTemplateGenerator-sub001/internal/agents"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newOptimizeCmd creates the `optimize` command, which runs only the CTA
// optimizer over a single template and prints the result record.
func newOptimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <template>",
		Short: "Inserts the CTA block into a single PHP template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			agent := agents.NewCTAOptimizer(cfg.AgentOptions(agents.CTAOptimizerID))
			res := agent.Run(cmd.Context(), args[0], uuid.New().String())

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal result: %w", err)
			}
			fmt.Println(string(out))

			if !res.Success {
				return fmt.Errorf("optimization failed: %s", res.ErrorMessage)
			}
			return nil
		},
	}
}
