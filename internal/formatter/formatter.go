// package formatter provides functions to export transfer run reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/t2c/internal/tasks"
)

// ReportToCSV converts a TransferRunResult to CSV format with columns: Workspace, Group, Created, Skipped, Failed
func ReportToCSV(result *tasks.TransferRunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Workspace", "Group", "Created", "Skipped", "Failed"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, ws := range result.Workspaces {
		for _, group := range ws.Groups {
			record := []string{
				ws.Workspace.Name,
				group.Group.String(),
				strconv.Itoa(group.Created),
				strconv.Itoa(group.Skipped),
				strconv.Itoa(group.Failed),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown converts a TransferRunResult to a Markdown report.
func ReportToMarkdown(result *tasks.TransferRunResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Transfer run %s\n\n", result.RunID))
	buf.WriteString(fmt.Sprintf("**Started**: %s\n", result.StartedAt.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("**Finished**: %s\n\n", result.FinishedAt.Format("2006-01-02 15:04:05")))

	buf.WriteString("| Workspace | Group | Created | Skipped | Failed |\n")
	buf.WriteString("|---|---|---|---|---|\n")
	for _, ws := range result.Workspaces {
		for _, group := range ws.Groups {
			buf.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %d |\n",
				ws.Workspace.Name, group.Group, group.Created, group.Skipped, group.Failed))
		}
	}

	totals := result.Totals()
	buf.WriteString(fmt.Sprintf("\n**Totals**: %d created, %d skipped, %d failed\n",
		totals.Created, totals.Skipped, totals.Failed))

	return buf.Bytes(), nil
}

// ReportToText converts a TransferRunResult to plain text format.
func ReportToText(result *tasks.TransferRunResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Transfer run: %s\n", result.RunID))
	buf.WriteString(fmt.Sprintf("Workspaces: %d\n\n", len(result.Workspaces)))

	for _, ws := range result.Workspaces {
		buf.WriteString(fmt.Sprintf("%s\n", ws.Workspace.Name))
		for _, group := range ws.Groups {
			buf.WriteString(fmt.Sprintf("  %-12s created %d, skipped %d, failed %d\n",
				group.Group, group.Created, group.Skipped, group.Failed))
		}
		buf.WriteString("\n")
	}

	totals := result.Totals()
	buf.WriteString(fmt.Sprintf("Totals: %d created, %d skipped, %d failed\n",
		totals.Created, totals.Skipped, totals.Failed))

	return buf.Bytes(), nil
}

// WriteReport renders the report in the format implied by the file extension
// (.csv, .md, anything else is plain text) and writes it to path.
func WriteReport(result *tasks.TransferRunResult, path string) error {
	var (
		data []byte
		err  error
	)

	switch {
	case strings.HasSuffix(path, ".csv"):
		data, err = ReportToCSV(result)
	case strings.HasSuffix(path, ".md"):
		data, err = ReportToMarkdown(result)
	default:
		data, err = ReportToText(result)
	}
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}
