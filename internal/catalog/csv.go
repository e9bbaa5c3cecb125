package catalog

import "strings"

// Parse splits raw CSV text into rows of fields.
//
// Blank lines are dropped. A double quote toggles quote mode and is never
// emitted; commas inside quote mode are literal. Doubled quotes get no
// escape treatment, so `"a""b"` reads as `ab`. Input with at most one
// non-blank line returns ErrNoData.
func Parse(raw string) ([][]string, error) {
	var rows [][]string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitLine(line))
	}
	if len(rows) <= 1 {
		return nil, ErrNoData
	}
	return rows, nil
}

func splitLine(line string) []string {
	var (
		fields  []string
		field   strings.Builder
		inQuote bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	return append(fields, field.String())
}
