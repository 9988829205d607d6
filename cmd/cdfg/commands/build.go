package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-cdfg/internal/config"
	"github.com/l3aro/go-cdfg/internal/log"
	"github.com/l3aro/go-cdfg/pkg/cache"
	"github.com/l3aro/go-cdfg/pkg/callgraph"
	"github.com/l3aro/go-cdfg/pkg/cdfg"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <file.ll> <function>",
	Short: "Build the control/data flow graphs of a function",
	Long: `Builds the basic block graph of the first function whose name contains
<function>, then one data flow graph per block. The block graph is exported
as DOT text (bb_graph.dot by default). Results are cached by file content.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		opts := buildOptions{
			Path:   args[0],
			Target: args[1],
		}
		opts.NoCache, _ = cmd.Flags().GetBool("no-cache")
		opts.BlocksDir, _ = cmd.Flags().GetString("blocks-dir")
		if cmd.Flags().Changed("dot") {
			cfg.DotPath, _ = cmd.Flags().GetString("dot")
			cfg.WriteDot = true
		}
		if noDot, _ := cmd.Flags().GetBool("no-dot"); noDot {
			cfg.WriteDot = false
		}
		if cmd.Flags().Changed("dot-style") {
			style, _ := cmd.Flags().GetString("dot-style")
			cfg.DotStyle = config.DotStyle(style)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		snap, _, err := buildSnapshot(cfg, logger, opts)
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printSnapshot(snap)
		return nil
	},
}

type buildOptions struct {
	Path      string
	Target    string
	NoCache   bool
	BlocksDir string
}

// buildSnapshot runs one build, or serves it from the snapshot cache when
// nothing but the snapshot and the plain block graph is needed. The second
// result reports a cache hit.
func buildSnapshot(cfg *config.Config, logger log.Logger, opts buildOptions) (*cdfg.Snapshot, bool, error) {
	content, err := readIR(opts.Path)
	if err != nil {
		return nil, false, err
	}

	var store *cache.Store
	key := cache.Key(content, opts.Target)
	if cfg.CacheEnabled && !opts.NoCache {
		store, err = cache.Open(cfg.CachePath, cfg.CacheMaxEntries)
		if err != nil {
			logger.Warn("snapshot cache unavailable", "path", cfg.CachePath, "error", err)
			store = nil
		}
	}

	lattice := cfg.WriteDot && cfg.DotStyle == config.DotStyleLattice
	if store != nil && opts.BlocksDir == "" && !lattice {
		if snap := cachedSnapshot(store, key, logger); snap != nil {
			if cfg.WriteDot {
				if err := snap.ExportBlockGraph(cfg.DotPath); err != nil {
					logger.Warn("block graph export failed", "path", cfg.DotPath, "error", err)
				}
			}
			flushStore(store, logger)
			return snap, true, nil
		}
	}

	mod, err := parseIR(opts.Path, content)
	if err != nil {
		return nil, false, err
	}

	buildOpts := []cdfg.Option{cdfg.WithLogger(logger)}
	if cfg.WriteDot && !lattice {
		buildOpts = append(buildOpts, cdfg.WithBlockGraphDOT(cfg.DotPath))
	}
	res, err := cdfg.Build(mod, opts.Target, buildOpts...)
	if err != nil {
		return nil, false, err
	}

	if lattice {
		dot := callgraph.CFGDOT(res.Function)
		if err := os.WriteFile(cfg.DotPath, []byte(dot), 0644); err != nil {
			logger.Warn("block graph export failed", "path", cfg.DotPath, "error", err)
		}
	}

	if opts.BlocksDir != "" {
		paths, err := res.ExportBlocks(opts.BlocksDir)
		if err != nil {
			return nil, false, fmt.Errorf("exporting block graphs: %w", err)
		}
		logger.Info("exported data flow graphs", "dir", opts.BlocksDir, "files", len(paths))
	}

	snap := cdfg.NewSnapshot(res)
	if store != nil {
		storeSnapshot(store, key, snap, logger)
	}
	return snap, false, nil
}

func cachedSnapshot(store *cache.Store, key string, logger log.Logger) *cdfg.Snapshot {
	data, err := store.Get(key)
	if err != nil {
		logger.Debug("snapshot cache miss", "key", key)
		return nil
	}
	snap, err := cdfg.DecodeSnapshot(data)
	if err != nil {
		logger.Warn("discarding unreadable snapshot", "key", key, "error", err)
		store.Delete(key)
		return nil
	}
	logger.Info("snapshot cache hit", "function", snap.Function, "path", store.Path())
	return snap
}

func storeSnapshot(store *cache.Store, key string, snap *cdfg.Snapshot, logger log.Logger) {
	data, err := snap.Encode()
	if err != nil {
		logger.Warn("snapshot not cached", "error", err)
		return
	}
	store.Put(key, data)
	flushStore(store, logger)
}

func flushStore(store *cache.Store, logger log.Logger) {
	if err := store.Flush(); err != nil {
		logger.Warn("snapshot cache write failed", "path", store.Path(), "error", err)
		return
	}
	stats := store.Stats()
	logger.Debug("snapshot cache saved",
		"entries", stats.Length,
		"bytes", stats.CurrentBytes,
		"hit_rate", fmt.Sprintf("%.2f", store.HitRate()),
		"evicted", store.Evicted(),
	)
}

// printSnapshot prints the build in human-readable format.
func printSnapshot(snap *cdfg.Snapshot) {
	fmt.Printf("=== CDFG for function: %s ===\n", snap.Function)
	fmt.Printf("Blocks: %d  Vertices: %d\n", len(snap.Blocks), snap.NumVertices())

	for _, b := range snap.Blocks {
		fmt.Printf("\n[%s] %d vertices, %d edges\n", b.Name, len(b.Vertices), len(b.Edges))
		if len(b.Vertices) == 0 {
			continue
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Kind", "Vertex", "Uses", "Defs"})
		for _, v := range b.Vertices {
			table.Append([]string{
				fmt.Sprintf("%d", v.ID),
				v.Kind,
				v.Label,
				formatIndices(v.Uses),
				formatIndices(v.Defs),
			})
		}
		table.Render()

		for _, e := range b.Edges {
			fmt.Printf("  n%d -> n%d (%s)\n", e.From, e.To, e.Operand)
		}
	}

	fmt.Printf("\nControl edges (%d):\n", len(snap.ControlEdges))
	for _, e := range snap.ControlEdges {
		fmt.Printf("  %s -> %s\n", e.From, e.To)
	}
}

func init() {
	buildCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	buildCmd.Flags().String("dot", "", "Write the block graph to this path (overrides dot_path)")
	buildCmd.Flags().Bool("no-dot", false, "Skip the block graph export")
	buildCmd.Flags().String("dot-style", "", "Block graph style: plain or lattice")
	buildCmd.Flags().Bool("no-cache", false, "Bypass the snapshot cache")
	buildCmd.Flags().String("blocks-dir", "", "Also write one DOT file per block into this directory")
	RootCmd.AddCommand(buildCmd)
}
