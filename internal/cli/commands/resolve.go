package commands

import (
	"github.com/spf13/cobra"

	"github.com/splashsync/connector/internal/cli/ui"
	"github.com/splashsync/connector/internal/token"
)

// NewResolveCommand creates the resolve command
func NewResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <token>...",
		Short: "Print the base type of each token",
		Long: `Strip list and reference wrapping until the innermost bare name
remains. The list delimiter is stripped first, so
"objectid::Order@lines" resolves to "Order".`,
		Example: `  splash resolve 'objectid::Order@lines' 'qty@lines'`,
		Args:    cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			table := ui.NewTable(cmd.OutOrStdout(), noColor(cmd), "TOKEN", "BASE TYPE")
			for _, arg := range args {
				table.AddRow(arg, token.BaseType(arg))
			}
			table.Render()
		},
	}
}
