package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-cdfg/internal/config"
	"github.com/l3aro/go-cdfg/pkg/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the snapshot cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached builds, most recently used first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		entries := cacheEntries(store)
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		stats := store.Stats()
		fmt.Printf("=== Snapshot cache: %s ===\n", store.Path())
		fmt.Printf("Entries: %d  Bytes: %d\n", stats.Length, stats.CurrentBytes)
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"#", "Content", "Target"})
		for i, e := range entries {
			table.Append([]string{fmt.Sprintf("%d", i), e.Content, e.Target})
		}
		table.Render()
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [target]",
	Short: "Drop cached builds",
	Long: `Drops every cached build, or with a target only the builds whose
function selector equals it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		n := clearStore(store, target)
		if err := store.Flush(); err != nil {
			return fmt.Errorf("writing snapshot cache: %w", err)
		}
		logger.Debug("cleared snapshot cache", "path", store.Path(), "removed", n)
		fmt.Printf("Removed %d cached build(s)\n", n)
		return nil
	},
}

// CacheEntry describes one cached build.
type CacheEntry struct {
	Content string `json:"content"` // sha256 of the IR file
	Target  string `json:"target"`
}

func openStore(cfg *config.Config) (*cache.Store, error) {
	if !cfg.CacheEnabled {
		return nil, fmt.Errorf("snapshot cache is disabled (cache_enabled: false)")
	}
	return cache.Open(cfg.CachePath, cfg.CacheMaxEntries)
}

func cacheEntries(store *cache.Store) []CacheEntry {
	keys := store.Keys()
	entries := make([]CacheEntry, 0, len(keys))
	for _, k := range keys {
		hash, target := cache.SplitKey(k)
		entries = append(entries, CacheEntry{Content: hash, Target: target})
	}
	return entries
}

// clearStore removes the entries built for target, or all entries when
// target is empty, and returns how many were removed.
func clearStore(store *cache.Store, target string) int {
	keys := store.Keys()
	if target == "" {
		store.Clear()
		return len(keys)
	}
	n := 0
	for _, k := range keys {
		if _, t := cache.SplitKey(k); t == target {
			store.Delete(k)
			n++
		}
	}
	return n
}

func init() {
	cacheListCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd)
	RootCmd.AddCommand(cacheCmd)
}
