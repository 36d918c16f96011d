package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"maturity-dashboard/internal/alerts"
	"maturity-dashboard/internal/model"
)

func newAlertsCmd() *cobra.Command {
	var (
		file   string
		now    string
		zone   string
		asJSON bool
	)
	cfg := alerts.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Bucket action plans into overdue, due-soon and high-priority alerts",
		Long: `Read a JSON array of action plans and partition the open ones into alert
buckets. Use -f - to read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			loc, err := loadLocation(zone)
			if err != nil {
				return err
			}
			at, err := parseNow(now, loc)
			if err != nil {
				return err
			}

			var records []actionPlanRecord
			if err := readJSON(cmd, file, &records); err != nil {
				return err
			}
			items := make([]model.ActionPlan, 0, len(records))
			for _, r := range records {
				items = append(items, r.toModel(loc))
			}

			b := alerts.Categorize(items, cfg, at)
			if asJSON {
				return writeJSON(cmd, b)
			}
			return printBuckets(cmd, b)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "action plans (JSON array), - for stdin")
	cmd.Flags().StringVar(&now, "now", "", "reference time, defaults to now")
	cmd.Flags().StringVar(&zone, "tz", "UTC", "time zone for dates without an offset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the buckets as JSON")
	cmd.Flags().IntVar(&cfg.DueSoonDays, "due-soon-days", cfg.DueSoonDays, "due-soon window in days")
	cmd.Flags().IntVar(&cfg.OverdueMaxDays, "overdue-max-days", cfg.OverdueMaxDays, "ignore items overdue for longer than this")
	cmd.Flags().IntVar(&cfg.HighPriorityThreshold, "high-priority-threshold", cfg.HighPriorityThreshold, "priority levels at or below this are high priority")
	cmd.Flags().IntVar(&cfg.HighPriorityMaxDays, "high-priority-max-days", cfg.HighPriorityMaxDays, "high-priority window in days")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printBuckets(cmd *cobra.Command, b alerts.Buckets) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d open item(s): %d overdue, %d due soon, %d high priority\n",
		b.TotalCount, b.OverdueCount, b.DueSoonCount, b.HighPriorityCount)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	sections := []struct {
		name  string
		items []model.ActionPlan
	}{
		{"OVERDUE", b.Overdue},
		{"DUE SOON", b.DueSoon},
		{"HIGH PRIORITY", b.HighPriority},
	}
	for _, s := range sections {
		for _, it := range s.items {
			fmt.Fprintf(w, "%s\t#%d\t%s\tP%d\t%s\n", s.name, it.ID, it.Title, it.PriorityLevel, it.DueDate.Format("2006-01-02"))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, d := range b.Dropped {
		fmt.Fprintf(out, "dropped #%d: %s\n", d.ID, d.Reason)
	}
	return nil
}
