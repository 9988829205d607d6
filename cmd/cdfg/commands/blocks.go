package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-cdfg/internal/config"
	"github.com/l3aro/go-cdfg/pkg/callgraph"
	"github.com/l3aro/go-cdfg/pkg/cdfg"
	"github.com/l3aro/go-cdfg/pkg/ir"
)

// blocksCmd represents the blocks command
var blocksCmd = &cobra.Command{
	Use:   "blocks <file.ll> <function>",
	Short: "Show the basic block graph of a function",
	Long: `Builds only the basic block graph of the first function whose name
contains <function> and prints every block with its successors.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		mod, err := loadModule(args[0], logger)
		if err != nil {
			return err
		}
		fn, err := mod.FindFunction(args[1])
		if err != nil {
			return err
		}

		bg, err := cdfg.BuildBlockGraph(fn)
		if err != nil {
			return fmt.Errorf("building block graph: %w", err)
		}

		if cmd.Flags().Changed("dot") {
			path, _ := cmd.Flags().GetString("dot")
			style := cfg.DotStyle
			if cmd.Flags().Changed("style") {
				s, _ := cmd.Flags().GetString("style")
				style = config.DotStyle(s)
			}
			if err := writeBlockGraph(fn, bg, style, path); err != nil {
				return err
			}
			logger.Info("wrote block graph", "path", path, "style", style)
		}

		infos := blockInfos(bg)
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(infos, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printBlockInfos(fn.Name, infos)
		return nil
	},
}

// BlockInfo is the printable summary of one block graph vertex.
type BlockInfo struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Instructions int      `json:"instructions"`
	Terminator   string   `json:"terminator,omitempty"`
	Successors   []string `json:"successors"`
}

func blockInfos(bg *cdfg.BlockGraph) []BlockInfo {
	infos := make([]BlockInfo, 0, bg.NumVertices())
	for _, v := range bg.Vertices() {
		b := v.Value
		info := BlockInfo{
			ID:           int(v.ID),
			Name:         b.Name,
			Instructions: len(b.Instructions),
			Successors:   []string{},
		}
		if term := b.Terminator(); term != nil {
			info.Terminator = term.Opcode
		}
		for _, s := range bg.Successors(v.ID) {
			succ, err := bg.Vertex(s)
			if err != nil {
				continue
			}
			info.Successors = append(info.Successors, succ.Value.Name)
		}
		infos = append(infos, info)
	}
	return infos
}

// writeBlockGraph exports bg in the requested style.
func writeBlockGraph(fn *ir.Function, bg *cdfg.BlockGraph, style config.DotStyle, path string) error {
	switch style {
	case config.DotStylePlain:
		return cdfg.ExportBlockGraph(bg, fn.Name, path)
	case config.DotStyleLattice:
		if err := os.WriteFile(path, []byte(callgraph.CFGDOT(fn)), 0644); err != nil {
			return fmt.Errorf("failed to write dot file %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("invalid dot style: %s (must be 'plain' or 'lattice')", style)
	}
}

func printBlockInfos(function string, infos []BlockInfo) {
	fmt.Printf("=== Blocks for function: %s ===\n", function)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Block", "Instructions", "Terminator", "Successors"})
	for _, info := range infos {
		succs := strings.Join(info.Successors, ", ")
		if succs == "" {
			succs = "-"
		}
		table.Append([]string{
			fmt.Sprintf("%d", info.ID),
			info.Name,
			fmt.Sprintf("%d", info.Instructions),
			info.Terminator,
			succs,
		})
	}
	table.Render()
}

func init() {
	blocksCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	blocksCmd.Flags().String("dot", "", "Write the block graph to this path")
	blocksCmd.Flags().String("style", "", "DOT style: plain or lattice (defaults to dot_style)")
	RootCmd.AddCommand(blocksCmd)
}
