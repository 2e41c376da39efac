package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pmatos/jsse/pkg/jsse"
)

var (
	evalAST  string
	logLevel string
)

var runCmd = &cobra.Command{
	Use:   "run [ast.json]",
	Short: "Run a JSON-encoded AST file or inline document",
	Long: `Execute a jsse program from a JSON-AST file or an inline document.

Examples:
  # Run a JSON-AST file
  jsse run program.json

  # Evaluate an inline JSON-AST document
  jsse run --eval-ast '{"start":0,"end":0,"body":[]}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&evalAST, "eval-ast", "", "evaluate an inline JSON-AST document instead of reading from file")
	runCmd.Flags().StringVar(&logLevel, "log-level", "warn", "logrus level for the interpreter's diagnostic log (trace, debug, info, warn, error)")
}

func runProgram(_ *cobra.Command, args []string) error {
	var (
		doc      []byte
		filename string
	)

	switch {
	case evalAST != "":
		doc = []byte(evalAST)
		filename = "<eval-ast>"
	case len(args) == 1:
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filename, err)
		}
		doc = content
	default:
		return fmt.Errorf("either provide a JSON-AST file path or use --eval-ast")
	}

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(logLevel); err == nil {
		log.SetLevel(lvl)
	}
	entry := logrus.NewEntry(log)

	interp, err := jsse.New(jsse.WithLogger(entry))
	if err != nil {
		return fmt.Errorf("failed to initialize interpreter: %w", err)
	}

	program, err := interp.Parse(doc)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[running %s]\n", filename)
	}

	result, err := interp.Run(program)
	if err != nil {
		if rtErr, ok := err.(*jsse.RuntimeError); ok {
			fmt.Fprintf(os.Stderr, "Uncaught exception: %s\n", rtErr.Message)
			return fmt.Errorf("execution failed")
		}
		return err
	}

	if verbose {
		fmt.Println(result.String())
	}
	return nil
}
