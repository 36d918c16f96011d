package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maturity-dashboard/internal/alerts"
	"maturity-dashboard/internal/timeline"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const projectJSON = `{
  "code": "P-100",
  "name": "Door module",
  "start_date": "2024-01-01",
  "end_date": "2024-12-31",
  "milestones": [
    {"id": 1, "name": "SOP", "target_date": "2024-11-01", "status": "planned"},
    {"id": 2, "name": "Design freeze", "target_date": "2024-03-01", "status": "InProgress"},
    {"id": 3, "name": "Kickoff", "target_date": "2023-12-01", "status": "completed"},
    {"id": 4, "name": "Broken", "target_date": "someday", "status": "planned"}
  ]
}`

func TestTimelineCmd_Table(t *testing.T) {
	path := writeTemp(t, "project.json", projectJSON)

	out, err := run(t, "", "timeline", "-f", path, "--today", "2024-06-01", "--lang", "fr")
	require.NoError(t, err)

	assert.Contains(t, out, "P-100 Door module")
	assert.Contains(t, out, "Design freeze")
	assert.Contains(t, out, "overdue")
	assert.Contains(t, out, "dans 153 jours")
	assert.Contains(t, out, "1 milestone(s) outside the project window")
	assert.Contains(t, out, "dropped #4 Broken")
	assert.Less(t, strings.Index(out, "Design freeze"), strings.Index(out, "SOP"))
}

func TestTimelineCmd_JSONFromStdin(t *testing.T) {
	out, err := run(t, projectJSON, "timeline", "-f", "-", "--today", "2024-06-01", "--json")
	require.NoError(t, err)

	var view timeline.View
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Milestones, 2)
	assert.Equal(t, 1, view.OffWindowCount)
	assert.Equal(t, 1, view.DroppedCount)
	require.NotNil(t, view.TodayMarker)
}

func TestTimelineCmd_InvalidInterval(t *testing.T) {
	path := writeTemp(t, "project.json", `{"start_date": "2024-05-01", "end_date": "2024-01-01"}`)

	_, err := run(t, "", "timeline", "-f", path)
	var ive *timeline.InvalidIntervalError
	require.ErrorAs(t, err, &ive)
}

func TestTimelineCmd_RequiresFile(t *testing.T) {
	_, err := run(t, "", "timeline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

const plansJSON = `[
  {"id": 1, "title": "Fix weld drawing", "due_date": "2024-03-13", "priority_level": 2, "status": "open"},
  {"id": 2, "title": "Supplier audit", "due_date": "2024-03-18", "priority_level": 4, "status": "in_progress"},
  {"id": 3, "title": "Tooling release", "due_date": "2024-04-01", "priority_level": 1, "status": "open"},
  {"id": 4, "title": "Done already", "due_date": "2024-03-01", "priority_level": 1, "status": "completed"},
  {"id": 5, "title": "No date", "due_date": "", "priority_level": 1, "status": "open"}
]`

func TestAlertsCmd_Table(t *testing.T) {
	path := writeTemp(t, "plans.json", plansJSON)

	out, err := run(t, "", "alerts", "-f", path, "--now", "2024-03-15T09:00:00Z")
	require.NoError(t, err)

	assert.Contains(t, out, "3 open item(s): 1 overdue, 1 due soon, 1 high priority")
	assert.Contains(t, out, "Fix weld drawing")
	assert.Contains(t, out, "dropped #5")
	assert.NotContains(t, out, "Done already")
}

func TestAlertsCmd_ThresholdFlags(t *testing.T) {
	path := writeTemp(t, "plans.json", plansJSON)

	out, err := run(t, "", "alerts", "-f", path, "--now", "2024-03-15T09:00:00Z", "--due-soon-days", "30", "--json")
	require.NoError(t, err)

	var b alerts.Buckets
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Equal(t, 2, b.DueSoonCount)
	assert.Zero(t, b.HighPriorityCount)
}

func TestAlertsCmd_RejectsNegativeWindow(t *testing.T) {
	path := writeTemp(t, "plans.json", plansJSON)

	_, err := run(t, "", "alerts", "-f", path, "--overdue-max-days", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overdue_max_days")
}
