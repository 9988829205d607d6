package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-cdfg/pkg/ir"
)

// funcsCmd represents the funcs command
var funcsCmd = &cobra.Command{
	Use:   "funcs <file.ll>",
	Short: "List the functions defined in a module",
	Long: `Lists every function with a body in declaration order. The first entry
whose name contains a build target is the one build selects.`,
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

		infos := funcInfos(mod)
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(infos, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("=== Functions in %s ===\n", mod.Name)
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"#", "Function", "Params", "Blocks", "Instructions"})
		for i, info := range infos {
			table.Append([]string{
				fmt.Sprintf("%d", i),
				info.Name,
				fmt.Sprintf("%d", info.Params),
				fmt.Sprintf("%d", info.Blocks),
				fmt.Sprintf("%d", info.Instructions),
			})
		}
		table.Render()
		return nil
	},
}

// FuncInfo summarizes one function.
type FuncInfo struct {
	Name         string `json:"name"`
	Params       int    `json:"params"`
	Blocks       int    `json:"blocks"`
	Instructions int    `json:"instructions"`
}

func funcInfos(mod *ir.Module) []FuncInfo {
	infos := make([]FuncInfo, 0, len(mod.Functions))
	for _, fn := range mod.Functions {
		infos = append(infos, FuncInfo{
			Name:         fn.Name,
			Params:       len(fn.Params),
			Blocks:       len(fn.Blocks),
			Instructions: fn.NumInstructions(),
		})
	}
	return infos
}

func init() {
	funcsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(funcsCmd)
}
