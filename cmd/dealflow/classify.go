package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dealflow/internal/chatlog"
	"github.com/Veraticus/dealflow/internal/cli"
	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/config"
	"github.com/Veraticus/dealflow/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <file>",
		Short: "Show how each message was classified and linked",
		Long: `Run the pipeline without saving and print one row per message: its
intent, confidence, mentioned trader, reply/confirm links and the signals
that fired. Useful for tuning rule sets.

On a terminal the rows open in a scrollable browser (tab cycles intents,
enter shows extracted fields, q quits). Piped output, or --no-interactive,
prints a static table instead.

Examples:
  dealflow classify chat.csv
  dealflow classify chat.csv --intent START,REPLY
  dealflow classify chat.csv --ruleset strict`,
		Args: cobra.ExactArgs(1),
		RunE: runClassify,
	}

	addPipelineFlags(cmd)
	cmd.Flags().StringSlice("intent", nil, "Only show these intents (START, REPLY, CONFIRM, NOISE)")
	cmd.Flags().Bool("no-interactive", false, "Print a static table even on a terminal")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	intents, _ := cmd.Flags().GetStringSlice("intent")
	filter := make(map[model.Intent]bool, len(intents))
	for _, name := range intents {
		intent := model.Intent(strings.ToUpper(strings.TrimSpace(name)))
		if !intent.Valid() {
			return common.NewUserError(fmt.Sprintf("Unknown intent %q", name), nil)
		}
		filter[intent] = true
	}

	msgs, err := chatlog.ReadFile(config.ExpandPath(args[0]))
	if err != nil {
		return common.NewUserError("Could not read chat log", err)
	}

	p, err := loadPipeline(cmd)
	if err != nil {
		return err
	}

	result, err := p.Run(cmd.Context(), msgs)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	out := cmd.OutOrStdout()
	noInteractive, _ := cmd.Flags().GetBool("no-interactive")
	if !noInteractive && cli.Interactive(cmd.InOrStdin(), out) {
		if err := cli.Browse(cmd.Context(), cli.NewBrowser(result.Table, filter), cmd.InOrStdin(), out); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, cli.RenderRows(result.Table, filter))
	}
	fmt.Fprintln(out, cli.RenderSummary(result.Stats))
	return nil
}
