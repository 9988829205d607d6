package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-cdfg/internal/config"
	"github.com/l3aro/go-cdfg/internal/healthcheck"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on configuration and outputs",
	Long: `Checks the configuration and verifies that the block graph output
location is writable and the snapshot cache is readable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, configPath, err := loadConfigWithPath()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		result, err := healthcheck.Check(cfg, configPath, configPath)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		if result.EffectivePath == "" {
			fmt.Println("Using built-in defaults (run 'cdfg init' to create a config file)")
		} else {
			fmt.Printf("Using config: %s (%s)\n", result.EffectivePath, result.EffectiveScope)
		}
		displayComponents(result)

		if !result.Healthy() {
			return fmt.Errorf("health check failed: one or more outputs are not usable")
		}
		return nil
	},
}

// loadConfigWithPath loads the configuration and reports which file won.
// An empty path means no file exists and defaults are in effect.
func loadConfigWithPath() (*config.Config, string, error) {
	projectConfigPath := config.ProjectConfigFilePath()
	globalConfigPath := config.GlobalConfigFilePath()

	var effectivePath string
	if fileExists(projectConfigPath) {
		effectivePath = projectConfigPath
	} else if fileExists(globalConfigPath) {
		effectivePath = globalConfigPath
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", effectivePath, err)
	}

	return cfg, effectivePath, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func displayComponents(result *healthcheck.HealthCheckResult) {
	fmt.Println("\nBlock Graph Output:")
	fmt.Printf("  Path: %s\n", result.DotOutput.Path)
	if result.DotOutput.Detail != "" {
		fmt.Printf("  Style: %s\n", result.DotOutput.Detail)
	}
	printComponentStatus(result.DotOutput)

	fmt.Println("\nSnapshot Cache:")
	fmt.Printf("  Path: %s\n", result.Cache.Path)
	if result.Cache.Detail != "" {
		fmt.Printf("  Contents: %s\n", result.Cache.Detail)
	}
	printComponentStatus(result.Cache)
}

func printComponentStatus(s healthcheck.ComponentStatus) {
	fmt.Printf("  Status: %s %s\n", formatStatusIcon(s.Status), s.Status)
	if s.Error != "" && s.Status == "error" {
		fmt.Printf("  Error: %s\n", s.Error)
	}
}

func formatStatusIcon(status string) string {
	switch status {
	case "ready", "empty":
		return "✓"
	case "disabled":
		return "-"
	case "error":
		return "✗"
	default:
		return "?"
	}
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
