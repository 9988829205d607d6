// Package commands provides the CLI commands for the cdfg tool.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-cdfg/internal/config"
	"github.com/l3aro/go-cdfg/internal/log"
	"github.com/l3aro/go-cdfg/pkg/ir"
	"github.com/l3aro/go-cdfg/pkg/llvmir"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cdfg",
	Short: "cdfg - control/data flow graphs for LLVM IR",
	Long: `cdfg builds a control flow graph over the basic blocks of an LLVM IR
function and a data flow graph inside every block.

Commands:
  build       Build the block graph and per-block data flow graphs
  blocks      Show the basic block graph of a function
  funcs       List the functions of a module
  calls       Show the module call graph
  cache       Inspect or clear the snapshot cache
  init        Create a configuration file interactively
  doctor      Check configuration and output locations

Use "cdfg [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}

// setup loads the effective configuration and the logger it describes.
func setup(cmd *cobra.Command) (*config.Config, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Verbose = true
	}
	return cfg, cfg.NewLogger(), nil
}

// isIRFile checks if the file has a .ll extension.
func isIRFile(filePath string) bool {
	return strings.HasSuffix(filePath, ".ll")
}

// readIR checks that path names an LLVM IR text file and returns its bytes.
func readIR(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, expected a file: %s", path)
	}
	if !isIRFile(path) {
		return nil, fmt.Errorf("unsupported file type: %s (only .ll files supported)", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return content, nil
}

// parseIR parses content with a spinner on interactive terminals.
func parseIR(path string, content []byte) (*ir.Module, error) {
	spinner := log.NewProgressSpinner(fmt.Sprintf("Parsing %s", filepath.Base(path)))
	spinner.Start()
	mod, err := llvmir.ParseBytes(path, content)
	spinner.Stop()
	return mod, err
}

// loadModule reads and parses an IR file.
func loadModule(path string, logger log.Logger) (*ir.Module, error) {
	content, err := readIR(path)
	if err != nil {
		return nil, err
	}
	mod, err := parseIR(path, content)
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed module", "path", path, "functions", len(mod.Functions))
	return mod, nil
}

func formatIndices(idx []int) string {
	if len(idx) == 0 {
		return "-"
	}
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = fmt.Sprintf("#%d", n)
	}
	return strings.Join(parts, " ")
}
