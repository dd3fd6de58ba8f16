// Package cli is the cobra command surface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cxxlint/cxxlint/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cxxlint",
		Short:         "Run clang-format and clang-tidy across a C/C++ tree",
		Long:          "cxxlint orchestrates clang-format and clang-tidy over a source tree, correlates their findings with what actually changed, and reports to the terminal, JSON, or the pull request.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// exitError carries a process exit code out of a command that already
// reported its result.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the root command and maps the outcome to a process exit
// code.
func Execute() int {
	err := newRootCmd().Execute()
	if err == nil {
		return domain.ExitPass
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var fatal domain.FatalError
	if errors.As(err, &fatal) {
		return fatal.ExitCode()
	}
	return domain.ExitChecksFailed
}
