package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/splashsync/connector/internal/cli/config"
	"github.com/splashsync/connector/internal/cli/ui"
	"github.com/splashsync/connector/internal/fields"
	"github.com/splashsync/connector/internal/logging"
	"github.com/splashsync/connector/internal/store"
	"github.com/splashsync/connector/internal/token"
)

// NewFieldsCommand creates the fields command
func NewFieldsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Manage stored field definitions",
		Long: `Manage the field definitions of each object type in the database
configured by database.driver and database.url.`,
		Example: `  splash fields add Order qty --type int --list lines
  splash fields add Order customer --type objectid --ref ThirdParty
  splash fields list Order
  splash fields get Order '42::qty@lines'`,
	}

	cmd.AddCommand(newFieldsListCommand())
	cmd.AddCommand(newFieldsGetCommand())
	cmd.AddCommand(newFieldsAddCommand())
	cmd.AddCommand(newFieldsDeleteCommand())
	cmd.AddCommand(newFieldsTypesCommand())

	return cmd
}

// openStore loads the configuration and opens a migrated store
func openStore(cmd *cobra.Command) (*store.Store, *zap.Logger, error) {
	cfg, err := config.LoadFrom(configPath(cmd))
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), noColor(cmd)))
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Open(cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Migrate(cmd.Context()); err != nil {
		s.Close()
		fmt.Fprint(cmd.ErrOrStderr(), ui.StoreError(err.Error(), "The fields table could not be created.", noColor(cmd)))
		return nil, nil, err
	}
	return s, logger, nil
}

func withStore(fn func(cmd *cobra.Command, s *store.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if cmd.Context() == nil {
			cmd.SetContext(context.Background())
		}
		s, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer s.Close()
		return fn(cmd, s, args)
	}
}

func newFieldsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <objectType>",
		Short: "List the fields of an object type",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			list, err := s.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warning("No fields stored for "+args[0], noColor(cmd)))
				return nil
			}

			table := ui.NewTable(cmd.OutOrStdout(), noColor(cmd), "ID", "TYPE", "VALUE TYPE", "LIST", "NAME", "REQUIRED")
			for _, f := range list {
				listName, _ := f.List()
				table.AddRow(f.ID, f.Type, f.ValueType(), listName, f.Name, strconv.FormatBool(f.Required))
			}
			table.Render()
			return nil
		}),
	}
}

func newFieldsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <objectType> <token>",
		Short: "Resolve a token to a stored field",
		Long: `Find the field a token addresses: the exact field ID first, then for a
list member the field of the same list named by its base type, then the
top-level field named by the token's base type.`,
		Args: cobra.ExactArgs(2),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			objectType, tok := args[0], args[1]

			reg, err := store.LoadRegistry(cmd.Context(), s, objectType)
			if err != nil {
				return err
			}

			f, err := reg.Resolve(tok)
			if errors.Is(err, fields.ErrFieldNotFound) {
				fmt.Fprint(cmd.ErrOrStderr(), ui.FieldNotFoundError(objectType, tok, suggestFields(reg, tok), noColor(cmd)))
				return err
			}
			if err != nil {
				return err
			}

			writeField(cmd, f)
			return nil
		}),
	}
}

// suggestFields proposes stored IDs whose base type is close to the token's
func suggestFields(reg *fields.Registry, tok string) []string {
	var bases []string
	ids := make(map[string][]string)
	for _, f := range reg.All() {
		base := f.Base()
		if _, seen := ids[base]; !seen {
			bases = append(bases, base)
		}
		ids[base] = append(ids[base], f.ID)
	}

	var out []string
	for _, base := range ui.FindSimilar(token.BaseType(tok), bases) {
		out = append(out, ids[base]...)
	}
	return out
}

func writeField(cmd *cobra.Command, f *fields.Field) {
	kv := ui.NewKeyValueTable(cmd.OutOrStdout(), noColor(cmd))
	kv.AddRow("id", f.ID)
	kv.AddRow("type", f.Type)
	kv.AddRow("value type", f.ValueType())
	if list, ok := f.List(); ok {
		kv.AddRow("list", list)
	}
	if target, ok := f.ReferencedType(); ok {
		kv.AddRow("references", target)
	}
	kv.AddRow("name", f.Name)
	if f.Description != "" {
		kv.AddRow("description", f.Description)
	}
	kv.AddRow("required", strconv.FormatBool(f.Required))
	kv.AddRow("read", strconv.FormatBool(f.Read))
	kv.AddRow("write", strconv.FormatBool(f.Write))
	kv.Render()
}

func newFieldsAddCommand() *cobra.Command {
	var (
		typ, name, desc, group, list, ref string
		required, readOnly, writeOnly     bool
	)

	cmd := &cobra.Command{
		Use:   "add <objectType> <id>",
		Short: "Add or replace a field",
		Long: `Store a field definition. --list places the field inside a list and
--ref makes it reference objects of another type; both are encoded into
the stored ID and type tokens.`,
		Args: cobra.ExactArgs(2),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			b := fields.NewField(typ, args[1]).Description(desc).Group(group)
			if name != "" {
				b.Name(name)
			}
			if list != "" {
				b.InList(list)
			}
			if ref != "" {
				b.Reference(ref)
			}
			if required {
				b.Required()
			}
			switch {
			case readOnly && writeOnly:
				return errors.New("--read-only and --write-only are exclusive")
			case readOnly:
				b.ReadOnly()
			case writeOnly:
				b.WriteOnly()
			}

			f, err := b.Build()
			if err != nil {
				return err
			}
			if err := s.Save(cmd.Context(), args[0], f); err != nil {
				return err
			}
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Saved %s on %s (type %s)", f.ID, args[0], f.Type), noColor(cmd))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&typ, "type", "t", fields.TypeVarchar, "Scalar field type")
	cmd.Flags().StringVar(&name, "name", "", "Display name (default: the id)")
	cmd.Flags().StringVar(&desc, "description", "", "Field description")
	cmd.Flags().StringVar(&group, "group", "", "Display group")
	cmd.Flags().StringVarP(&list, "list", "l", "", "List holding the field")
	cmd.Flags().StringVar(&ref, "ref", "", "Object type the field references")
	cmd.Flags().BoolVar(&required, "required", false, "Mark the field required")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Field cannot be written")
	cmd.Flags().BoolVar(&writeOnly, "write-only", false, "Field cannot be read")

	return cmd
}

func newFieldsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <objectType> <id>",
		Short: "Delete a stored field by its exact ID",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			if err := s.Delete(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Deleted %s from %s", args[1], args[0]), noColor(cmd))
			return nil
		}),
	}
}

func newFieldsTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List object types with stored fields",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			types, err := s.ObjectTypes(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range types {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		}),
	}
}
