// Package cmd implements the jsse CLI, a thin cobra wrapper around
// pkg/jsse: a version template and persistent flags in this file, a
// run subcommand in run.go.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "jsse",
	Short: "A Test262-style ECMAScript interpreter",
	Long: `jsse runs pre-parsed ECMAScript programs.

It takes a JSON-encoded AST (see internal/astjson for the wire contract)
rather than source text: this interpreter has no lexer/parser of its own,
by design, so it can be pointed at any conformant front end's output.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
