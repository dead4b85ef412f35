package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dealflow/internal/cli"
	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/service"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded extraction runs",
		RunE:  runRuns,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show (0 = all)")
	cmd.Flags().String("since", "", "Only runs started on or after this date (YYYY-MM-DD)")

	return cmd
}

func runRuns(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	since, _ := cmd.Flags().GetString("since")

	filter := service.RunFilter{Limit: limit}
	if since != "" {
		day, err := time.ParseInLocation(model.DateLayout, since, time.Local)
		if err != nil {
			return common.NewUserError("Invalid --since date (use YYYY-MM-DD)", err)
		}
		filter.Since = &day
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	runs, err := store.ListRuns(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRuns(runs))
	return nil
}

func dealsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deals",
		Short: "Show the deals of a recorded run",
		Long: `Show the deals of a recorded run. Without --run, the latest run is used.

Examples:
  dealflow deals
  dealflow deals --run 3f2c9a4e-...`,
		RunE: runDeals,
	}

	cmd.Flags().String("run", "", "Run ID (default: latest run)")

	return cmd
}

func runDeals(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	runID, _ := cmd.Flags().GetString("run")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	run, err := resolveRun(ctx, store, runID)
	if err != nil {
		return err
	}

	deals, err := store.GetDeals(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load deals: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Run %s (%s)", run.ID, run.Source)))
	fmt.Fprintln(out, cli.RenderDeals(deals))
	return nil
}

func rejectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rejections",
		Short: "Show why quotes of a recorded run did not become deals",
		RunE:  runRejections,
	}

	cmd.Flags().String("run", "", "Run ID (default: latest run)")
	cmd.Flags().String("reason", "", "Only show rejections with this reason code")

	return cmd
}

func runRejections(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	runID, _ := cmd.Flags().GetString("run")
	reason, _ := cmd.Flags().GetString("reason")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	run, err := resolveRun(ctx, store, runID)
	if err != nil {
		return err
	}

	rejections, err := store.GetRejections(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load rejections: %w", err)
	}
	if reason != "" {
		filtered := rejections[:0]
		for _, r := range rejections {
			if r.Reason == reason {
				filtered = append(filtered, r)
			}
		}
		rejections = filtered
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Run %s (%s)", run.ID, run.Source)))
	fmt.Fprintln(out, cli.RenderRejections(rejections, nil))
	return nil
}
