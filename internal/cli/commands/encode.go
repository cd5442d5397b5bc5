package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/splashsync/connector/internal/token"
)

// askOne is replaced in tests
var askOne = survey.AskOne

// Encoding kinds offered by the interactive prompt
const (
	encodeKindList = "list member (field@list)"
	encodeKindRef  = "id reference (id::Type)"
)

// NewEncodeCommand creates the encode command
func NewEncodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build identifier tokens",
		Long: `Join two parts into a token. Without a subcommand the kind and the
parts are prompted for interactively.

Parts are joined as given: a part that already holds a delimiter changes
how the result splits.`,
		Example: `  splash encode list qty lines      # qty@lines
  splash encode ref 42 Order        # 42::Order
  splash encode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := promptEncode()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <field> <list>",
		Short: "Encode a list member, field@list",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), token.EncodeListMember(args[0], args[1]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ref <id> <type>",
		Short: "Encode an object reference, id::Type",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), token.EncodeIDReference(args[0], args[1]))
		},
	})

	return cmd
}

func promptEncode() (string, error) {
	var kind string
	if err := askOne(&survey.Select{
		Message: "Token kind:",
		Options: []string{encodeKindList, encodeKindRef},
	}, &kind); err != nil {
		return "", err
	}

	leftLabel, rightLabel := "Field name:", "List name:"
	if kind == encodeKindRef {
		leftLabel, rightLabel = "Object ID:", "Object type:"
	}

	var left, right string
	if err := askOne(&survey.Input{Message: leftLabel}, &left); err != nil {
		return "", err
	}
	if err := askOne(&survey.Input{Message: rightLabel}, &right); err != nil {
		return "", err
	}

	if kind == encodeKindRef {
		return token.EncodeIDReference(left, right), nil
	}
	return token.EncodeListMember(left, right), nil
}
