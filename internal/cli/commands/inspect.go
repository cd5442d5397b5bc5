package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/splashsync/connector/internal/cli/ui"
	"github.com/splashsync/connector/internal/token"
)

// Output formats of inspect
const (
	formatTable = "table"
	formatJSON  = "json"
)

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <token>...",
		Short: "Decompose identifier tokens",
		Long: `Show the shape, base type and parts of each token.

Splitting always happens at the first delimiter, and a token holding both
delimiters is read as a list member.`,
		Example: `  splash inspect 'qty@lines'
  splash inspect '42::Order@lines' --format json
  splash inspect ''`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decs := make([]token.Decomposition, len(args))
			for i, arg := range args {
				decs[i] = token.Parse(arg)
			}

			switch format {
			case formatJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(decs)
			case formatTable:
				writeDecompositions(cmd.OutOrStdout(), decs, noColor(cmd))
				return nil
			default:
				return fmt.Errorf("unknown format %q (expected %s or %s)", format, formatTable, formatJSON)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table or json")
	return cmd
}

func writeDecompositions(w io.Writer, decs []token.Decomposition, noColor bool) {
	for i, d := range decs {
		if i > 0 {
			fmt.Fprintln(w)
		}

		kv := ui.NewKeyValueTable(w, noColor)
		kv.AddRow("token", fmt.Sprintf("%q", d.Token))
		kv.AddRow("shape", d.Shape)
		kv.AddRow("base type", fmt.Sprintf("%q", d.BaseType))
		if d.ListMember != nil {
			kv.AddRow("field", fmt.Sprintf("%q", d.ListMember.Field))
			kv.AddRow("list", fmt.Sprintf("%q", d.ListMember.List))
		}
		if d.IDReference != nil {
			kv.AddRow("object id", fmt.Sprintf("%q", d.IDReference.ID))
			kv.AddRow("object type", fmt.Sprintf("%q", d.IDReference.Type))
		}
		kv.Render()
	}
}
