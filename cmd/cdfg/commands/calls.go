package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-cdfg/pkg/callgraph"
)

// callsCmd represents the calls command
var callsCmd = &cobra.Command{
	Use:   "calls <file.ll>",
	Short: "Show the call graph of a module",
	Long: `Lists every call instruction of the module and, with --dot, writes the
function call graph as DOT text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		mod, err := loadModule(args[0], logger)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("dot") {
			path, _ := cmd.Flags().GetString("dot")
			if err := os.WriteFile(path, []byte(callgraph.DOT(mod, mod.Name)), 0644); err != nil {
				return fmt.Errorf("failed to write dot file %s: %w", path, err)
			}
		}

		sites := callgraph.Sites(mod)
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(sites, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		g := callgraph.Build(mod)
		fmt.Printf("=== Call graph: %s ===\n", mod.Name)
		fmt.Printf("Functions: %d  Edges: %d  Call sites: %d\n", len(g.Nodes), len(g.Edges), len(sites))

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Caller", "Block", "Index", "Callee", "Type"})
		for _, s := range sites {
			callee := s.Callee
			if callee == "" {
				callee = "?"
			}
			table.Append([]string{s.Caller, s.Block, fmt.Sprintf("%d", s.Index), callee, string(s.Type)})
		}
		table.Render()
		return nil
	},
}

func init() {
	callsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	callsCmd.Flags().String("dot", "", "Write the call graph to this path")
	RootCmd.AddCommand(callsCmd)
}
