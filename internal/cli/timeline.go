package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"maturity-dashboard/internal/model"
	"maturity-dashboard/internal/timeline"
)

func newTimelineCmd() *cobra.Command {
	var (
		file   string
		today  string
		lang   string
		zone   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Render a project timeline from a JSON export",
		Long: `Place each milestone of a project export on the project's time window,
derive its status and label the days remaining.

The export is a JSON object with code, name, start_date, end_date and a
milestones array. Use -f - to read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := loadLocation(zone)
			if err != nil {
				return err
			}
			now, err := parseNow(today, loc)
			if err != nil {
				return err
			}

			var export projectExport
			if err := readJSON(cmd, file, &export); err != nil {
				return err
			}

			iv, err := timeline.ParseInterval(export.StartDate, export.EndDate, loc)
			if err != nil {
				return err
			}
			milestones := make([]model.Milestone, 0, len(export.Milestones))
			for _, r := range export.Milestones {
				milestones = append(milestones, r.toModel(loc))
			}

			view, err := timeline.Build(iv, milestones, now, timeline.MatchLocale(lang))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, view)
			}
			return printTimeline(cmd, export, view)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "project export (JSON), - for stdin")
	cmd.Flags().StringVar(&today, "today", "", "reference date, defaults to now")
	cmd.Flags().StringVar(&lang, "lang", "en", "label language (en, fr, zh)")
	cmd.Flags().StringVar(&zone, "tz", "UTC", "time zone for dates without an offset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printTimeline(cmd *cobra.Command, export projectExport, view *timeline.View) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s  %s → %s\n", export.Code, export.Name,
		view.Interval.Start.Format("2006-01-02"), view.Interval.End.Format("2006-01-02"))
	if view.TodayMarker != nil {
		fmt.Fprintf(out, "today at %.1f%%\n", *view.TodayMarker)
	} else {
		fmt.Fprintln(out, "today is outside the project window")
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tMILESTONE\tTARGET\tSTATUS\tREMAINING")
	for _, mv := range view.Milestones {
		fmt.Fprintf(w, "%5.1f%%\t%s\t%s\t%s\t%s\n",
			mv.PositionPercent,
			mv.Milestone.Name,
			mv.Milestone.TargetDate.Format("2006-01-02"),
			mv.DerivedStatus,
			mv.DaysRemainingLabel,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if view.OffWindowCount > 0 {
		fmt.Fprintf(out, "\n%d milestone(s) outside the project window\n", view.OffWindowCount)
	}
	for _, d := range view.Dropped {
		fmt.Fprintf(out, "dropped #%d %s: %s\n", d.ID, d.Name, d.Reason)
	}
	return nil
}
