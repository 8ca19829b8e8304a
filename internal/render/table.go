package render

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/harunnryd/studioport/internal/convert"
)

type TableFormatter struct {
	headerStyle  lipgloss.Style
	oddRowStyle  lipgloss.Style
	evenRowStyle lipgloss.Style
	borderStyle  lipgloss.Style
	okStyle      lipgloss.Style
	warnStyle    lipgloss.Style
	failStyle    lipgloss.Style
}

func NewTableFormatter() *TableFormatter {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	return &TableFormatter{
		headerStyle: lipgloss.NewStyle().
			Foreground(purple).
			Bold(true).
			Align(lipgloss.Center).
			Padding(0, 1),
		oddRowStyle: lipgloss.NewStyle().
			Foreground(gray).
			Padding(0, 1),
		evenRowStyle: lipgloss.NewStyle().
			Foreground(lightGray).
			Padding(0, 1),
		borderStyle: lipgloss.NewStyle().
			Foreground(purple),
		okStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		warnStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		failStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

func (f *TableFormatter) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(f.borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return f.headerStyle
			case row%2 == 0:
				return f.evenRowStyle
			default:
				return f.oddRowStyle
			}
		}).
		Headers(headers...)
}

// FormatMessages lists every converted message with the call ids it opens or
// answers.
func (f *TableFormatter) FormatMessages(res *convert.Result) string {
	if res == nil || len(res.Request.Messages) == 0 {
		return "No messages"
	}

	t := f.newTable("#", "Role", "Call ID", "Tools", "Content")
	for i, msg := range res.Request.Messages {
		callID := msg.ToolCallID
		var tools []string
		if len(msg.ToolCalls) > 0 {
			ids := make([]string, len(msg.ToolCalls))
			tools = make([]string, len(msg.ToolCalls))
			for j, call := range msg.ToolCalls {
				ids[j] = call.ID
				tools[j] = call.Function.Name
			}
			callID = strings.Join(ids, ", ")
		}

		t.Row(
			strconv.Itoa(i),
			msg.Role,
			truncateString(callID, 32),
			truncateString(strings.Join(tools, ", "), 32),
			truncateString(preview(msg.Content), 48),
		)
	}
	return t.String()
}

// JobRow is one line of the batch summary.
type JobRow struct {
	Name     string
	Status   string
	Messages int
	Tools    int
	Detail   string
}

const (
	JobStatusOK    = "ok"
	JobStatusEmpty = "empty"
	JobStatusFail  = "failed"
)

func (f *TableFormatter) FormatJobs(rows []JobRow) string {
	if len(rows) == 0 {
		return "No jobs"
	}

	t := f.newTable("Job", "Status", "Messages", "Tools", "Detail")
	for _, row := range rows {
		t.Row(
			truncateString(row.Name, 32),
			row.Status,
			strconv.Itoa(row.Messages),
			strconv.Itoa(row.Tools),
			truncateString(preview(row.Detail), 60),
		)
	}
	return t.String()
}

// StatusLine is the one-line summary printed after a conversion.
func (f *TableFormatter) StatusLine(res *convert.Result) string {
	return f.DoneLine(fmt.Sprintf("Converted %d messages, %d tools", res.MessageCount, res.ToolCount))
}

func (f *TableFormatter) DoneLine(msg string) string {
	return f.okStyle.Render("✓") + " " + msg
}

func (f *TableFormatter) WarnLine(msg string) string {
	return f.warnStyle.Render("!") + " " + msg
}

func (f *TableFormatter) FailLine(msg string) string {
	return f.failStyle.Render("✗") + " " + msg
}

func preview(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
