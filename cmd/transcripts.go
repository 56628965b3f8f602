package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bioreason/bioreason/internal/session"
	"github.com/bioreason/bioreason/internal/shared/cmdutils"
	"github.com/bioreason/bioreason/internal/shared/llmutils"
)

var transcriptsLimit int

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts [session-id]",
	Short: "List stored query transcripts or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTranscripts,
}

func init() {
	transcriptsCmd.Flags().IntVarP(&transcriptsLimit, "limit", "n", 20, "Number of transcripts to list")
}

func runTranscripts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := session.NewStore(cfg.WorkspacePath())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		rec, err := store.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Session:    %s\nCreated:    %s\nMode:       %s\nState:      %s\nIterations: %d\n",
			rec.ID, rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Mode, rec.State, rec.Iterations)
		if rec.Error != "" {
			fmt.Fprintf(out, "Error:      %s\n", rec.Error)
		}
		fmt.Fprintln(out)
		printTranscript(out, rec.Messages)
		cmdutils.PrintAnswer(out, rec.Mode, rec.Answer)
		return nil
	}

	summaries, err := store.List()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No transcripts.")
		return nil
	}
	fmt.Fprintf(out, "%-36s %-16s %-14s %-8s %s\n", "ID", "Created", "Mode", "State", "Query")
	for i, s := range summaries {
		if i == transcriptsLimit {
			break
		}
		fmt.Fprintf(out, "%-36s %-16s %-14s %-8s %s\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Mode, s.State, llmutils.Truncate(s.Query, 50))
	}
	return nil
}
