package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bioreason/bioreason/internal/config"
	"github.com/bioreason/bioreason/internal/modes"
	"github.com/bioreason/bioreason/internal/shared/cmdutils"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration, workspace and an example mode catalog",
	RunE:  runOnboard,
}

// exampleModes seeds the user catalog with a mode that is not built in.
var exampleModes = []modes.Definition{{
	ID:          "ecological",
	Name:        "Ecological Reasoning",
	Description: "Explains biological patterns through interactions between organisms and their environment.",
	Aliases:     []string{"ecology"},
	Keywords:    []string{"ecosystem", "predator", "prey", "competition", "niche", "habitat", "population", "community"},
	SystemPrompt: `You are an Ecological Reasoning Expert. For the question "{{.Query}}":
1. Identify the organisms, populations and environmental factors involved.
2. Describe the interactions (competition, predation, mutualism, abiotic limits).
3. Explain how those interactions produce the observed pattern.
4. Use the literature tools to cite field or experimental evidence.`,
	Tools: modes.ToolSet{
		A: []string{"parametric_memory"},
		C: []string{"search_literature", "web_search"},
	},
}}

func runOnboard(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}

	cfg := config.DefaultConfig()
	if _, err := os.Stat(cfgPath); err == nil {
		existing, loadErr := config.Load(cfgPath)
		if loadErr == nil {
			cfg = *existing
		}
		fmt.Fprintf(out, "Config already exists at %s, refreshing (existing values kept)\n", cfgPath)
	}

	workspace := cfg.WorkspacePath()
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	fmt.Fprintf(out, "✓ Workspace at %s\n", workspace)

	if cfg.Modes.Catalog == "" {
		catalog := filepath.Join(filepath.Dir(cfgPath), "modes.yaml")
		if _, err := os.Stat(catalog); os.IsNotExist(err) {
			data, err := modes.MarshalCatalog(exampleModes)
			if err != nil {
				return err
			}
			if err := os.WriteFile(catalog, data, 0o644); err != nil {
				return fmt.Errorf("write mode catalog: %w", err)
			}
			fmt.Fprintf(out, "✓ Example mode catalog at %s\n", catalog)
		}
		cfg.Modes.Catalog = catalog
	}

	if err := config.Save(&cfg, cfgPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Config at %s\n", cfgPath)

	fmt.Fprintf(out, "\n%s bioreason is ready!\n\n", cmdutils.Logo)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  1. Add your API key to %s (or set %s in .env)\n", cfgPath, config.EnvAPIKey)
	fmt.Fprintln(out, "  2. List modes: bioreason modes")
	fmt.Fprintln(out, `  3. Ask:        bioreason query -q "Why do Darwin's finches have different beak shapes?"`)
	return nil
}
