package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// Flag names shared by every subcommand
const (
	flagConfig  = "config"
	flagNoColor = "no-color"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "splash",
		Short: "Composite identifier tools for Splash connectors",
		Long: color.CyanString(`Splash - connector toolkit

Inspect, resolve and encode the composite identifiers exchanged with a
Splash server, manage the field definitions of each object type and serve
them over HTTP.

Identifier grammar:
  • field@list     a field inside a list
  • id::Type       a reference to an object of another type
  • 42::Order@lines combines both, the list separator wins`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(flagConfig, "", "Config file (default: ./splash.yml)")
	rootCmd.PersistentFlags().Bool(flagNoColor, false, "Disable colored output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor(cmd) {
			color.NoColor = true
		}
	}

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewResolveCommand())
	rootCmd.AddCommand(NewEncodeCommand())
	rootCmd.AddCommand(NewFieldsCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the splash version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "Splash version: ")
			valueColor.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			valueColor.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			valueColor.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			valueColor.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

func noColor(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool(flagNoColor)
	return err == nil && v
}

func configPath(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString(flagConfig)
	return v
}
