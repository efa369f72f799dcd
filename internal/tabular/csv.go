// internal/tabular/csv.go
// Package tabular parses delimited text and profiles the resulting columns.
//
// The parser is deliberately line-oriented rather than RFC 4180: blank lines
// are dropped wherever they appear and quoted fields cannot span lines. That
// keeps uploads with decorative spacing usable at the cost of multi-line
// cells, which the profiler has no use for anyway.
package tabular

import "strings"

// Table is the parsed form of a delimited upload. Rows are not padded to the
// header width; readers must tolerate short rows.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ParseCSV splits text into lines (normalizing \r\n and bare \r to \n,
// discarding blank lines) and parses each line with quoted-field support:
// commas inside quotes are literal, and a doubled quote inside a quoted
// field produces a single quote character. The first non-blank line is
// always consumed as the header row.
func ParseCSV(text string) Table {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var records [][]string
	for _, line := range strings.Split(normalized, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, parseLine(line))
	}
	if len(records) == 0 {
		return Table{}
	}
	return Table{Headers: records[0], Rows: records[1:]}
}

func parseLine(line string) []string {
	var cells []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch ch := line[i]; ch {
		case '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ',':
			if inQuotes {
				cur.WriteByte(ch)
			} else {
				cells = append(cells, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(ch)
		}
	}
	cells = append(cells, cur.String())
	return cells
}
