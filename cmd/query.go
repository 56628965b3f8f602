package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bioreason/bioreason/internal/coordinator"
	"github.com/bioreason/bioreason/internal/dependency"
	"github.com/bioreason/bioreason/internal/schema"
	"github.com/bioreason/bioreason/internal/shared/cmdutils"
	"github.com/bioreason/bioreason/internal/shared/llmutils"
)

var (
	queryText       string
	queryMode       string
	queryClassifier string
	queryTranscript bool
	queryNoSave     bool
	queryTimeout    time.Duration
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Answer a biological question",
	Example: `  bioreason query -q "Why do Darwin's finches have different beak shapes?" -m teleonomic
  bioreason query --classifier hybrid -q "How does insulin regulate blood glucose?"
  bioreason query`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "Question to answer; omit for interactive mode")
	queryCmd.Flags().StringVarP(&queryMode, "mode", "m", "", "Reasoning mode (skips classification)")
	queryCmd.Flags().StringVar(&queryClassifier, "classifier", "", "Mode classifier when no mode is given: keyword, llm or hybrid")
	queryCmd.Flags().BoolVar(&queryTranscript, "transcript", false, "Print the full transcript after the answer")
	queryCmd.Flags().BoolVar(&queryNoSave, "no-save", false, "Do not store the transcript")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 5*time.Minute, "Deadline for one query")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runQuery(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	container, err := dependency.New(cfg, dependency.Options{
		OnProgress: func(s string) { fmt.Fprintf(os.Stderr, "  ↳ %s\n", s) },
		NoStore:    queryNoSave,
	})
	if err != nil {
		return err
	}

	classifier, err := container.Classifier(queryClassifier)
	if err != nil {
		return err
	}
	sel := coordinator.Classify(classifier)
	if queryMode != "" {
		sel = coordinator.Mode(queryMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if queryText != "" {
		return answer(ctx, out, container.Coordinator(), queryText, sel)
	}
	return runInteractive(ctx, cmd.InOrStdin(), out, container.Coordinator(), sel)
}

// runInteractive reads one question per line until EOF or an exit command.
// Failed queries are reported and the loop continues.
func runInteractive(ctx context.Context, in io.Reader, out io.Writer, coord *coordinator.Coordinator, sel coordinator.Selector) error {
	fmt.Fprintf(out, "%s Interactive mode (type 'exit' or Ctrl+C to quit)\n\n", cmdutils.Logo)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Question: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nGoodbye!")
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if err := answer(ctx, out, coord, line, sel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func answer(ctx context.Context, out io.Writer, coord *coordinator.Coordinator, q string, sel coordinator.Selector) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "  ↳ thinking...\n")
	res, err := coord.ProcessQuery(ctx, q, sel)
	if res != nil && res.Classification != nil {
		c := res.Classification
		fmt.Fprintf(os.Stderr, "  ↳ mode %s (%s, confidence %.2f)\n", c.Mode, c.Method, c.Confidence)
	}
	if err != nil {
		if queryTranscript && res != nil {
			printTranscript(out, res.Transcript)
		}
		return err
	}

	cmdutils.PrintAnswer(out, res.Mode, res.Answer)
	if queryTranscript {
		printTranscript(out, res.Transcript)
	}
	fmt.Fprintf(os.Stderr, "  ↳ %d model calls, tools: %s, session %s\n",
		res.Iterations, llmutils.StringOrDefault(strings.Join(res.ToolsUsed, ", "), "none"), res.SessionID)
	return nil
}

func printTranscript(w io.Writer, msgs schema.Messages) {
	fmt.Fprintln(w, "─── transcript ───")
	for _, m := range msgs.Messages {
		switch {
		case m.Role == schema.RoleTool:
			label := "tool"
			if m.IsError {
				label = "tool error"
			}
			fmt.Fprintf(w, "[%s %s] %s\n", label, m.ToolName, llmutils.Truncate(m.Text(), 500))
		case len(m.ToolCalls) > 0:
			if text := m.Text(); text != "" {
				fmt.Fprintf(w, "[%s] %s\n", m.Role, text)
			}
			for _, tc := range m.ToolCalls {
				fmt.Fprintf(w, "[%s → %s] %s\n", m.Role, tc.Name, tc.ArgumentsJSON())
			}
		default:
			fmt.Fprintf(w, "[%s] %s\n", m.Role, m.Text())
		}
	}
	fmt.Fprintln(w)
}
