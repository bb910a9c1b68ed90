package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the application version, overridable at build time via
// -ldflags "-X .../cmd.Version=...".
var Version = "0.1.0"

// newVersionCmd creates the `version` command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the templatepipe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	}
}
