package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dealflow/internal/chatlog"
	"github.com/Veraticus/dealflow/internal/cli"
	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/config"
	"github.com/Veraticus/dealflow/internal/engine"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Reconstruct deals from a chat log",
		Long: `Run the full pipeline over a chat log and record the result.

The log is a CSV table with date, time, bank, trader_name and text columns,
already ordered by time. Every quote ends up either as a deal or as a
rejection with a reason.

Examples:
  dealflow extract chat.csv                   # Extract and save the run
  dealflow extract chat.csv --dry-run         # Extract without saving
  dealflow extract chat.csv --ruleset strict  # Only explicit bid/ask quotes`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	addPipelineFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "Run the pipeline without saving the run")
	cmd.Flags().Bool("no-progress", false, "Hide the stage progress bar")
	cmd.Flags().Bool("rejections", false, "Also list rejected quotes")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	showRejections, _ := cmd.Flags().GetBool("rejections")
	out := cmd.OutOrStdout()

	source := config.ExpandPath(args[0])
	msgs, err := chatlog.ReadFile(source)
	if err != nil {
		return common.NewUserError("Could not read chat log", err)
	}

	var opts []engine.Option
	if !noProgress {
		opts = append(opts, engine.WithObserver(cli.NewProgressObserver(cmd.ErrOrStderr())))
	}
	p, err := loadPipeline(cmd, opts...)
	if err != nil {
		return err
	}

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), !dryRun)
	defer interruptHandler.Stop()

	result, err := p.Run(ctx, msgs)
	if err != nil {
		if interruptHandler.WasInterrupted() {
			return nil
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Deals in %s", source)))
	fmt.Fprintln(out, cli.RenderSummary(result.Stats))
	fmt.Fprintln(out, cli.RenderDeals(result.Deals))
	if showRejections {
		fmt.Fprintln(out, cli.RenderRejections(result.Rejections, msgs))
	}

	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo("Dry run: nothing was saved"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	record := result.Record(source)
	if err := store.SaveRun(ctx, record); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	common.LogInfo("Run recorded", common.Fields{
		"run_id":   record.Run.ID,
		"database": store.Path(),
	})
	slog.Debug("Run details", "source", source, "deals", len(result.Deals), "rejections", len(result.Rejections))
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved run %s", record.Run.ID)))
	return nil
}
