package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bioreason/bioreason/internal/config"
	"github.com/bioreason/bioreason/internal/providers"
	"github.com/bioreason/bioreason/internal/shared/cmdutils"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bioreason status",
	RunE:  runStatus,
}

func mark(err error) string {
	if err == nil {
		return "✓"
	}
	return "✗"
}

func runStatus(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}

	fmt.Fprintf(out, "%s bioreason Status\n\n", cmdutils.Logo)

	_, statErr := os.Stat(cfgPath)
	fmt.Fprintf(out, "Config:     %s %s\n", cfgPath, mark(statErr))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(out, "  (could not load config: %v)\n", err)
		return nil
	}

	ws := cfg.WorkspacePath()
	_, wsErr := os.Stat(ws)
	fmt.Fprintf(out, "Workspace:  %s %s\n", ws, mark(wsErr))
	if catalog := cfg.CatalogPath(); catalog != "" {
		_, catErr := os.Stat(catalog)
		fmt.Fprintf(out, "Catalog:    %s %s\n", catalog, mark(catErr))
	}
	match := cfg.MatchProvider(cfg.Coordinator.Model)
	fmt.Fprintf(out, "Model:      %s (provider: %s)\n", cfg.Coordinator.Model, orNone(match.Name))
	fmt.Fprintf(out, "Vision:     %s\n", cfg.Vision.Model)
	fmt.Fprintf(out, "Classifier: %s\n", cfg.Coordinator.Classifier)
	fmt.Fprintf(out, "Max iter:   %d\n\n", cfg.Coordinator.MaxIter)

	fmt.Fprintln(out, "Providers:")
	for _, spec := range providers.PROVIDERS {
		p := cfg.ProviderByName(spec.Name)
		if p == nil {
			continue
		}
		label := spec.Label()
		switch {
		case spec.IsLocal:
			if p.APIBase != "" {
				fmt.Fprintf(out, "  %-20s ✓ %s\n", label, p.APIBase)
			} else {
				fmt.Fprintf(out, "  %-20s (not set)\n", label)
			}
		default:
			if p.APIKey != "" {
				fmt.Fprintf(out, "  %-20s ✓\n", label)
			} else {
				fmt.Fprintf(out, "  %-20s (not set)\n", label)
			}
		}
	}

	r := cfg.Resources
	fmt.Fprintln(out, "\nResources:")
	fmt.Fprintf(out, "  %-20s %s\n", "PubMed", orDefault(r.PubMedBase))
	fmt.Fprintf(out, "  %-20s %s\n", "bioRxiv", orDefault(r.BioRxivBase))
	fmt.Fprintf(out, "  %-20s %s\n", "UniProt", orDefault(r.UniProtBase))
	fmt.Fprintf(out, "  %-20s %s\n", "KEGG", orDefault(r.KEGGBase))
	fmt.Fprintf(out, "  %-20s %s\n", "Open Targets", orDefault(r.OpenTargetsURL))
	if r.WebSearchKey != "" {
		fmt.Fprintf(out, "  %-20s ✓\n", "Web search")
	} else {
		fmt.Fprintf(out, "  %-20s (not set)\n", "Web search")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none configured"
	}
	return s
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}
