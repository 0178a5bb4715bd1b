package imports

import (
	"fmt"
	"strings"
)

// Row is one parsed CSV data row keyed by header name.
type Row map[string]string

// Parsed is the outcome of parsing delimited text. Rows whose field count
// does not match the header produce an entry in Errors and are excluded
// from Rows; parsing continues for the remaining lines.
type Parsed struct {
	Headers []string
	Rows    []Row
	Errors  []string
}

// Parse turns raw CSV text into headers and row mappings. The first
// non-blank line is the header row. Fields may be double-quoted; inside
// quotes the delimiter is literal and a doubled quote decodes to one
// literal quote. All values are trimmed of surrounding whitespace.
func Parse(text string) *Parsed {
	parsed := &Parsed{}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		parsed.Errors = append(parsed.Errors, "CSV file is empty")
		return parsed
	}

	headers := parseLine(lines[0])
	if len(headers) == 0 {
		parsed.Errors = append(parsed.Errors, "CSV file has no headers")
		return parsed
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	parsed.Headers = headers

	for i := 1; i < len(lines); i++ {
		values := parseLine(lines[i])
		if len(values) != len(headers) {
			parsed.Errors = append(parsed.Errors,
				fmt.Sprintf("Row %d: Column count mismatch (expected %d, got %d)", i+1, len(headers), len(values)))
			continue
		}

		row := make(Row, len(headers))
		for j, header := range headers {
			row[header] = strings.TrimSpace(values[j])
		}
		parsed.Rows = append(parsed.Rows, row)
	}

	return parsed
}

// parseLine splits a single CSV line, handling quoted values.
func parseLine(line string) []string {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return nil
	}

	var values []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				// Escaped quote
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			values = append(values, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	values = append(values, current.String())

	return values
}
