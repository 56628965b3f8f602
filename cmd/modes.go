package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bioreason/bioreason/internal/dependency"
	"github.com/bioreason/bioreason/internal/shared/llmutils"
	"github.com/bioreason/bioreason/internal/triage"
)

var (
	modesClassify   string
	modesClassifier string
)

var modesCmd = &cobra.Command{
	Use:   "modes [id]",
	Short: "List reasoning modes, describe one, or classify a question",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runModes,
}

func init() {
	modesCmd.Flags().StringVar(&modesClassify, "classify", "", "Show which mode a question would be dispatched to")
	modesCmd.Flags().StringVar(&modesClassifier, "classifier", triage.MethodKeyword, "Classifier used with --classify: keyword, llm or hybrid")
}

func runModes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	offline := modesClassify == "" || modesClassifier == triage.MethodKeyword
	container, err := dependency.New(cfg, dependency.Options{Offline: offline, NoStore: true})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	registry := container.Modes()

	switch {
	case modesClassify != "":
		classifier, err := container.Classifier(modesClassifier)
		if err != nil {
			return err
		}
		c, err := classifier.Classify(context.Background(), modesClassify)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Mode:       %s\nMethod:     %s\nConfidence: %.2f\n", c.Mode, c.Method, c.Confidence)
		if c.Reasoning != "" {
			fmt.Fprintf(out, "Reasoning:  %s\n", c.Reasoning)
		}
		return nil

	case len(args) == 1:
		desc, err := registry.Describe(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(out, desc)
		return nil
	}

	fmt.Fprintf(out, "%-16s %-28s %s\n", "ID", "Name", "Description")
	fmt.Fprintln(out, strings.Repeat("-", 88))
	for _, def := range registry.Definitions() {
		fmt.Fprintf(out, "%-16s %-28s %s\n", def.ID, llmutils.Truncate(def.Title(), 27), llmutils.Truncate(def.Description, 60))
	}
	return nil
}
