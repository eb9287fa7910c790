package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/venue-usage-tui/internal/config"
	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/pipeline"
	"github.com/j-veylop/venue-usage-tui/internal/services"
	"github.com/j-veylop/venue-usage-tui/internal/ui/components"
)

// runFlags are shared by the commands that fetch usage.
type runFlags struct {
	project string
	from    string
	to      string
	mode    string
}

func (f *runFlags) register(cmd *cobra.Command, withMode bool) {
	addProjectFlag(cmd, &f.project)
	cmd.Flags().StringVar(&f.from, "from", "", "first day, YYYY-MM-DD (default: start of this month)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day, YYYY-MM-DD (default: today)")
	if withMode {
		cmd.Flags().StringVar(&f.mode, "mode", "safe", "concurrency preset: safe or turbo")
	}
}

func (f *runFlags) dateRange(now time.Time) (models.DateRange, error) {
	def := models.CurrentMonth(now)
	from, to := f.from, f.to
	if from == "" {
		from = def.Start.Format(models.InputDateLayout)
	}
	if to == "" {
		to = def.End.Format(models.InputDateLayout)
	}
	return models.ParseDateRange(from, to)
}

func (f *runFlags) resolve() (models.DateRange, models.FetchMode, error) {
	dr, err := f.dateRange(time.Now())
	if err != nil {
		return models.DateRange{}, 0, err
	}
	mode, err := models.ParseFetchMode(f.mode)
	if err != nil {
		return models.DateRange{}, 0, err
	}
	return dr, mode, nil
}

// progressPrinter writes one line per resolved location.
func progressPrinter(w io.Writer) func(pipeline.Completion) {
	return func(c pipeline.Completion) {
		line := fmt.Sprintf("[%*d/%d] %-7s %s", len(fmt.Sprint(c.Total)), c.Done, c.Total,
			c.Outcome.Kind, c.Location)
		if c.Outcome.Reason != "" {
			line += ": " + c.Outcome.Reason
		}
		fmt.Fprintln(w, line)
	}
}

func printCounts(w io.Writer, run *models.Run) {
	fmt.Fprintf(w, "%d ok, %d empty, %d failed of %d locations in %s\n",
		run.Counts.Success, run.Counts.Empty, run.Counts.Failed, run.Total,
		services.Elapsed(run.Duration()))
	if run.Cancelled {
		fmt.Fprintln(w, "Run was cancelled; locations not yet dispatched are listed as errors.")
	}
}

func newCheckCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "check <location-id>",
		Short: "Fetch and chart the usage of one location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dr, _, err := flags.resolve()
			if err != nil {
				return err
			}
			return withManager(func(_ *config.Config, mgr *services.Manager) error {
				loc, outcome, err := mgr.Check(cmd.Context(), flags.project, args[0], dr)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, pipeline.ChartTitle(loc, dr))
				if !outcome.IsSuccess() {
					fmt.Fprintf(out, "%s: %s\n", outcome.Kind, outcome.Reason)
					return nil
				}
				s := outcome.Series
				fmt.Fprintf(out, "Total %.2f GB · daily average %.2f GB · peak %d users · %d days\n\n",
					s.TotalGigabytes(), s.AverageGigabytes(), s.MaxConnectedUsers(), len(s))
				fmt.Fprintln(out, components.RenderUsageChart(s, 70, 22))
				return nil
			})
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newExportCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a chart for every location into a zip bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dr, mode, err := flags.resolve()
			if err != nil {
				return err
			}
			return withManager(func(_ *config.Config, mgr *services.Manager) error {
				res, err := mgr.Export(cmd.Context(), flags.project, dr, mode, progressPrinter(cmd.ErrOrStderr()))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Archive written to %s\n", res.Path)
				printCounts(out, res.Run)
				return nil
			})
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newSummaryCommand() *cobra.Command {
	var (
		flags runFlags
		top   int
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Rank every location by total usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dr, mode, err := flags.resolve()
			if err != nil {
				return err
			}
			return withManager(func(_ *config.Config, mgr *services.Manager) error {
				res, err := mgr.Summary(cmd.Context(), flags.project, dr, mode, progressPrinter(cmd.ErrOrStderr()))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				report := res.Report
				fmt.Fprintf(out, "%s · %s\n%d of %d locations active · %.2f GB in total\n\n",
					flags.project, dr, report.Active, report.Total, report.GrandTotalGB())

				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(w, "RANK\tLOC_ID\tSITE_NAME\tTOTAL_GB\tAVG_GB\t")
				for i, row := range report.Top(top) {
					fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t\n",
						i+1, row.LocationID, row.DisplayName, row.TotalUsageGB, row.AvgUsageGB)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintln(out)
				printCounts(out, res.Run)
				return nil
			})
		},
	}
	flags.register(cmd, true)
	cmd.Flags().IntVar(&top, "top", -1, "show only the first N locations")
	return cmd
}

func newRunsCommand() *cobra.Command {
	var (
		project    string
		limit      int
		showErrors bool
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recorded export and summary runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(func(_ *config.Config, mgr *services.Manager) error {
				runs, err := mgr.RecentRuns(cmd.Context(), project, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintf(out, "No runs recorded for %s\n", project)
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "STARTED\tKIND\tMODE\tRANGE\tOK\tEMPTY\tFAILED\tTOOK\tID")
				for _, run := range runs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
						run.StartedAt.Local().Format("2006-01-02 15:04"), run.Kind, run.Mode, run.Range,
						run.Counts.Success, run.Counts.Empty, run.Counts.Failed,
						services.Elapsed(run.Duration()), run.ID)
				}
				if err := w.Flush(); err != nil {
					return err
				}

				if !showErrors {
					return nil
				}
				for _, run := range runs {
					detail, err := mgr.RunDetail(cmd.Context(), run)
					if err != nil {
						return err
					}
					if len(detail.Errors) == 0 {
						continue
					}
					fmt.Fprintf(out, "\n%s %s\n", run.Kind, run.ID)
					for _, e := range detail.Errors {
						fmt.Fprintln(out, "  "+e.Line())
					}
				}
				return nil
			})
		},
	}
	addProjectFlag(cmd, &project)
	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to show")
	cmd.Flags().BoolVar(&showErrors, "errors", false, "print the error log of each run")
	return cmd
}
