package sync

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strings"
)

// StreamDocRow represents a single row in the stream documentation.
type StreamDocRow struct {
	Name           string
	Path           string
	PrimaryKeys    string
	ReplicationKey string
	ParentStream   string
}

// GenerateStreamDocumentation summarises the configured streams, sorted
// with root streams first, then alphabetically by name.
func GenerateStreamDocumentation(streams []StreamDef) []StreamDocRow {
	rows := make([]StreamDocRow, 0, len(streams))
	for _, s := range streams {
		rows = append(rows, StreamDocRow{
			Name:           s.Name,
			Path:           s.Path,
			PrimaryKeys:    strings.Join(s.PrimaryKeys, "|"),
			ReplicationKey: s.ReplicationField,
			ParentStream:   s.ChildOf,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if (rows[i].ParentStream == "") != (rows[j].ParentStream == "") {
			return rows[i].ParentStream == ""
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// FormatStreamDocumentationCSV formats the stream documentation as CSV.
func FormatStreamDocumentationCSV(rows []StreamDocRow) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Stream", "Path", "Primary Keys", "Replication Key", "Parent Stream"}
	if err := writer.Write(headers); err != nil {
		return "", err
	}

	for _, row := range rows {
		record := []string{row.Name, row.Path, row.PrimaryKeys, row.ReplicationKey, row.ParentStream}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return buf.String(), nil
}
