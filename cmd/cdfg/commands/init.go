package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-cdfg/internal/config"
	"github.com/l3aro/go-cdfg/internal/healthcheck"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cdfg configuration interactively",
	Long: `Guides you through setting up cdfg configuration step by step.
Creates a config file with block graph output, snapshot cache and logging settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	cfg := config.DefaultConfig()

	// === SECTION 1: Block graph output ===
	style := string(cfg.DotStyle)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Block graph export").
				Description("Write the block graph of every build as DOT text?").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.WriteDot),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	if cfg.WriteDot {
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("DOT output path").
					Placeholder("bb_graph.dot").
					Value(&cfg.DotPath),
				huh.NewSelect[string]().
					Title("DOT style").
					Description("Plain digraph or the styled lattice CFG").
					Options(
						huh.NewOption("Plain", string(config.DotStylePlain)),
						huh.NewOption("Lattice", string(config.DotStyleLattice)),
					).
					Value(&style),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		cfg.DotStyle = config.DotStyle(style)
	}

	// === SECTION 2: Snapshot cache ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Snapshot cache").
				Description("Reuse builds of unchanged IR files?").
				Affirmative("Enable").
				Negative("Disable").
				Value(&cfg.CacheEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	if cfg.CacheEnabled {
		maxEntries := strconv.Itoa(cfg.CacheMaxEntries)
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Cache file").
					Placeholder(cfg.CachePath).
					Value(&cfg.CachePath),
				huh.NewInput().
					Title("Maximum cached builds").
					Placeholder(maxEntries).
					Validate(func(s string) error {
						if n, err := strconv.Atoi(s); err != nil || n < 0 {
							return fmt.Errorf("enter a non-negative number")
						}
						return nil
					}).
					Value(&maxEntries),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		cfg.CacheMaxEntries, _ = strconv.Atoi(maxEntries)
	}

	// === SECTION 3: Logging ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&cfg.LogLevel),
			huh.NewConfirm().
				Title("JSON log lines?").
				Value(&cfg.JSONLogs),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 4: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.cdfg/config.yaml)", "global"),
					huh.NewOption("Project (./.cdfg/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigFilePath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	if cfg.WriteDot {
		fmt.Printf("Block graph: %s (%s)\n", cfg.DotPath, cfg.DotStyle)
	} else {
		fmt.Println("Block graph: disabled")
	}
	if cfg.CacheEnabled {
		fmt.Printf("Snapshot cache: %s (max %d)\n", cfg.CachePath, cfg.CacheMaxEntries)
	} else {
		fmt.Println("Snapshot cache: disabled")
	}
	fmt.Printf("Log level: %s (json: %t)\n", cfg.LogLevel, cfg.JSONLogs)
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)

	// === SECTION 5: Health Check ===
	fmt.Println("\n=== Running Health Check ===")

	loadedCfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading saved config: %w", err)
	}

	result, err := healthcheck.Check(loadedCfg, configPath, configPath)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	fmt.Printf("\nConfig Scope: %s\n", result.SavedScope)
	if result.SavedScope == "global" {
		fmt.Printf("Config Path: %s\n", configPath)
	} else {
		absPath, _ := filepath.Abs(configPath)
		fmt.Printf("Config Path: %s\n", absPath)
	}
	displayComponents(result)

	fmt.Println("\n=== Initialization Complete ===")
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
