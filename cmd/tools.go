package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bioreason/bioreason/internal/dependency"
	"github.com/bioreason/bioreason/internal/schema"
	"github.com/bioreason/bioreason/internal/shared/llmutils"
	"github.com/bioreason/bioreason/internal/tools"
)

var toolsMode string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools of every layer",
	RunE:  runTools,
}

func init() {
	toolsCmd.Flags().StringVarP(&toolsMode, "mode", "m", "", "Only show the tools offered to this reasoning mode")
}

func runTools(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	container, err := dependency.New(cfg, dependency.Options{Offline: true, NoStore: true})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	mode := ""
	if toolsMode != "" {
		def, err := container.Modes().Resolve(toolsMode)
		if err != nil {
			return err
		}
		mode = def.ID
	}

	for _, layer := range schema.Layers {
		adapter, ok := container.Layers()[layer]
		if !ok {
			continue
		}
		var ds []tools.Descriptor
		if mode != "" {
			ds = adapter.ToolsForMode(mode)
		} else if ra, ok := adapter.(interface{ Registry() *tools.Registry }); ok {
			ds = ra.Registry().Descriptors()
		}
		fmt.Fprintf(out, "Layer %s\n%s\n", layer, strings.Repeat("-", 40))
		if len(ds) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, d := range ds {
			fmt.Fprintf(out, "  %-20s %s\n", d.Name(), llmutils.Truncate(d.Description(), 70))
		}
		fmt.Fprintln(out)
	}
	return nil
}
