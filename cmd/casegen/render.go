package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/workbench"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	statusStyles = map[model.ExecutionStatus]lipgloss.Style{
		model.StatusPass:    successStyle,
		model.StatusFail:    errorStyle,
		model.StatusWIP:     warningStyle,
		model.StatusBlocked: errorStyle.Bold(true),
	}
)

const cellGap = "  "

type column struct {
	title string
	width int
	style func(cell string) lipgloss.Style
}

// renderTable lays rows out in fixed-width columns. Cells are cut to the
// column width by display cells, so wide runes do not break alignment.
func renderTable(cols []column, rows [][]string) string {
	var sb strings.Builder

	for i, c := range cols {
		if i > 0 {
			sb.WriteString(cellGap)
		}
		sb.WriteString(headerStyle.Render(fitCell(c.title, c.width)))
	}
	sb.WriteString("\n")

	for _, row := range rows {
		for i, c := range cols {
			if i > 0 {
				sb.WriteString(cellGap)
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			text := fitCell(cell, c.width)
			if c.style != nil {
				text = c.style(cell).Render(text)
			}
			sb.WriteString(text)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func fitCell(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func renderIssues(st workbench.State) string {
	if len(st.Page.Issues) == 0 {
		return mutedStyle.Render("No issues match the current filters.")
	}

	cols := []column{
		{title: "", width: 1},
		{title: "Key", width: 10},
		{title: "Type", width: 10},
		{title: "Status", width: 14},
		{title: "Sprint", width: 16},
		{title: "Summary", width: 60},
	}
	rows := make([][]string, len(st.Page.Issues))
	for i, issue := range st.Page.Issues {
		marker := ""
		if st.ActiveIssue != nil && st.ActiveIssue.Key == issue.Key {
			marker = "*"
		}
		rows[i] = []string{marker, issue.Key, issue.Type, issue.Status, issue.Sprint, issue.Summary}
	}

	footer := workbench.PaginationInfo(st.Page)
	if !st.Filter.IsEmpty() {
		footer += " (filtered)"
	}
	return renderTable(cols, rows) + "\n" + mutedStyle.Render(footer)
}

func renderTestCases(cases []model.TestCase) string {
	if len(cases) == 0 {
		return mutedStyle.Render("No test cases yet. Use 'generate' or 'add'.")
	}

	cols := []column{
		{title: "ID", width: 12},
		{title: "Title", width: 36},
		{title: "Steps", width: 40},
		{title: "Expected Result", width: 30},
		{title: "Priority", width: 8},
		{title: "Status", width: 10, style: statusStyle},
	}
	rows := make([][]string, len(cases))
	for i, tc := range cases {
		rows[i] = []string{tc.ID, tc.Title, tc.Steps, tc.ExpectedResult, tc.Priority, string(tc.ExecutionStatus.Normalize())}
	}
	return renderTable(cols, rows) + "\n" + mutedStyle.Render(fmt.Sprintf("%d test cases", len(cases)))
}

func statusStyle(cell string) lipgloss.Style {
	if s, ok := statusStyles[model.ExecutionStatus(cell)]; ok {
		return s
	}
	return mutedStyle
}

func renderTestCase(tc model.TestCase) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(tc.ID+"  "+tc.Title) + "\n")
	sb.WriteString(headerStyle.Render("Steps") + "\n" + tc.Steps + "\n")
	sb.WriteString(headerStyle.Render("Expected Result") + "\n" + tc.ExpectedResult + "\n")
	status := tc.ExecutionStatus.Normalize()
	sb.WriteString(fmt.Sprintf("%s %s   %s %s",
		headerStyle.Render("Priority:"), tc.Priority,
		headerStyle.Render("Status:"), statusStyle(string(status)).Render(string(status))))
	return sb.String()
}

func renderIssue(issue *model.Issue) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(issue.Key+"  "+issue.Summary) + "\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s · %s", issue.Type, issue.Status, issue.Priority)) + "\n")
	if desc := strings.TrimSpace(issue.Description); desc != "" {
		sb.WriteString(runewidth.Truncate(desc, 800, "..."))
	} else {
		sb.WriteString(mutedStyle.Render("(no description)"))
	}
	return sb.String()
}

// renderNamed lists id/name pairs such as sprints or versions.
func renderNamed(title string, ids []string, names []string) string {
	if len(ids) == 0 {
		return mutedStyle.Render("No " + strings.ToLower(title) + " found.")
	}
	rows := make([][]string, len(ids))
	for i := range ids {
		rows[i] = []string{ids[i], names[i]}
	}
	return renderTable([]column{{title: "ID", width: 10}, {title: title, width: 50}}, rows)
}

func renderSprints(sprints []model.Sprint) string {
	ids, names := make([]string, len(sprints)), make([]string, len(sprints))
	for i, s := range sprints {
		ids[i] = strconv.FormatInt(s.ID, 10)
		names[i] = s.Name
		if s.State != "" {
			names[i] += " (" + strings.ToLower(s.State) + ")"
		}
	}
	return renderNamed("Sprint", ids, names)
}

func renderBoards(boards []model.Board) string {
	ids, names := make([]string, len(boards)), make([]string, len(boards))
	for i, b := range boards {
		ids[i] = strconv.FormatInt(b.ID, 10)
		names[i] = b.Name
	}
	return renderNamed("Board", ids, names)
}

func renderComponents(components []model.Component) string {
	ids, names := make([]string, len(components)), make([]string, len(components))
	for i, c := range components {
		ids[i] = c.ID
		names[i] = c.Name
	}
	return renderNamed("Component", ids, names)
}

func renderVersions(versions []model.Version) string {
	ids, names := make([]string, 0, len(versions)+1), make([]string, 0, len(versions)+1)
	ids = append(ids, "-1")
	names = append(names, "Unscheduled")
	for _, v := range versions {
		name := v.Name
		if v.Released {
			name += " (released)"
		}
		ids = append(ids, strconv.FormatInt(v.ID, 10))
		names = append(names, name)
	}
	return renderNamed("Version", ids, names)
}

func renderCycles(cycles []model.TestCycle) string {
	ids, names := make([]string, 0, len(cycles)+1), make([]string, 0, len(cycles)+1)
	ids = append(ids, "-1")
	names = append(names, "Ad hoc")
	for _, c := range cycles {
		if c.ID == -1 {
			continue
		}
		ids = append(ids, strconv.FormatInt(c.ID, 10))
		names = append(names, c.Name)
	}
	return renderNamed("Cycle", ids, names)
}

func renderConnections(status workbench.ConnectionStatus, relayURL, provider string) string {
	line := func(name string, err error) string {
		if err != nil {
			return errorStyle.Render("✗ "+name) + mutedStyle.Render(": "+err.Error())
		}
		return successStyle.Render("✓ " + name)
	}
	return line("relay "+relayURL, status.Relay) + "\n" + line("tracker ("+provider+")", status.Tracker)
}

func renderSuccess(msg string) string {
	return successStyle.Render(msg)
}

func renderError(err error) string {
	out := errorStyle.Render("Error: " + err.Error())

	var relayErr *workbench.RelayError
	if errors.As(err, &relayErr) && relayErr.Raw != "" {
		out += "\n" + mutedStyle.Render("Model output: "+runewidth.Truncate(relayErr.Raw, 500, "..."))
	}
	return out
}
