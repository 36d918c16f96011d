package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"maturity-dashboard/internal/model"
	"maturity-dashboard/internal/timeline"
)

// Export records carry dates as strings so malformed values reach the
// derivation and are reported instead of failing the whole file.
type milestoneRecord struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PhaseOrder int    `json:"phase_order"`
	TargetDate string `json:"target_date"`
	Status     string `json:"status"`
}

type projectExport struct {
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	StartDate  string            `json:"start_date"`
	EndDate    string            `json:"end_date"`
	Milestones []milestoneRecord `json:"milestones"`
}

type actionPlanRecord struct {
	ID            int64  `json:"id"`
	ProjectID     int64  `json:"project_id"`
	Title         string `json:"title"`
	Owner         string `json:"owner"`
	DueDate       string `json:"due_date"`
	PriorityLevel int    `json:"priority_level"`
	Status        string `json:"status"`
}

// readJSON decodes path, or stdin when path is "-".
func readJSON(cmd *cobra.Command, path string, out any) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// dateOrZero maps an unparseable date to the zero time.
func dateOrZero(s string, loc *time.Location) time.Time {
	t, err := timeline.ParseDate(s, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (r milestoneRecord) toModel(loc *time.Location) model.Milestone {
	status, ok := model.ParseMilestoneStatus(r.Status)
	if !ok {
		status = model.MilestoneStatus(r.Status)
	}
	return model.Milestone{
		ID:         r.ID,
		Name:       r.Name,
		PhaseOrder: r.PhaseOrder,
		TargetDate: dateOrZero(r.TargetDate, loc),
		Status:     status,
	}
}

func (r actionPlanRecord) toModel(loc *time.Location) model.ActionPlan {
	status, ok := model.ParseWorkItemStatus(r.Status)
	if !ok {
		status = model.WorkItemStatus(r.Status)
	}
	return model.ActionPlan{
		ID:            r.ID,
		ProjectID:     r.ProjectID,
		Title:         r.Title,
		Owner:         r.Owner,
		DueDate:       dateOrZero(r.DueDate, loc),
		PriorityLevel: r.PriorityLevel,
		Status:        status,
	}
}

// parseNow parses --today / --now, defaulting to the current time in loc.
func parseNow(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	t, err := timeline.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
