// internal/cli/root.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/law-makers/datalayer/internal/app"
	"github.com/law-makers/datalayer/internal/config"
	"github.com/law-makers/datalayer/internal/engine"
	"github.com/law-makers/datalayer/internal/ui"
)

// Version is the CLI version, overridable at link time.
var Version = "0.1.0"

// Exit codes
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "datalayer",
		Short: "Capture analytics dataLayer events from a web page",
		Long: `Datalayer loads a page, scrolls it to the bottom, clicks every link with
navigation suppressed, and reads the page's analytics event queue
(window.dataLayer). Matching events are flattened into one uniform table
and written to a file.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initApp,
	}

	config.RegisterFlags(root)
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpFunc(helpFunc)
	root.SetUsageFunc(usageFunc)
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	root.AddCommand(newExtractCommand(), newReplayCommand())
	return root
}

// initApp loads configuration and creates the Application before any
// subcommand runs. Help and version never reach it.
func initApp(cmd *cobra.Command, args []string) error {
	if GetApp(cmd) != nil {
		return nil
	}

	cfg, err := config.Load(cmd)
	if err != nil {
		return engine.NewEngineError(engine.ErrCodeConfig, "failed to load configuration", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return engine.NewEngineError(engine.ErrCodeConfig, "failed to initialize", err)
	}
	SetApp(cmd, a)
	return nil
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, s := withSession(ctx)

	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if s.app != nil {
		if cerr := s.app.Close(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(stderr, "%s %v\n", ui.Error("Error:"), err)
	return exitCode(err)
}

// Main is the entry point used by cmd/datalayer.
func Main(ctx context.Context) int {
	return Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ue *usageError
	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.As(err, &ue):
		return ExitUsage
	}
	if code, ok := engine.CodeOf(err); ok && (code == engine.ErrCodeValidation || code == engine.ErrCodeConfig) {
		return ExitUsage
	}
	return ExitFailure
}
