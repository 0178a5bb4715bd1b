package imports

import (
	"strings"
	"unicode"
)

// headerAliases maps common spreadsheet header spellings to the canonical
// column name each importer expects. Keys are matched after lowercasing,
// then after camelCase-to-snake_case conversion.
var headerAliases = map[string]string{
	"email":      "email",
	"useremail":  "email",
	"user email": "email",
	"user_email": "email",
	"name":       "name",
	"role":       "role",
	"created_at": "created_at",
	"createdat":  "created_at",
	"created at": "created_at",
	"amount":     "amount",
	"status":     "status",
	"plan":       "plan",
	"start_date": "start_date",
	"startdate":  "start_date",
	"start date": "start_date",
	"end_date":   "end_date",
	"enddate":    "end_date",
	"end date":   "end_date",
}

// CanonicalHeader maps a raw header to its canonical column name. The
// lowercased form is tried first, then the camelCase-to-snake_case form,
// so "userEmail", "UserEmail" and "user_email" all address "email".
// Unmapped headers come back lowercased.
func CanonicalHeader(header string) string {
	trimmed := strings.TrimSpace(header)
	lower := strings.ToLower(trimmed)
	if canonical, ok := headerAliases[lower]; ok {
		return canonical
	}
	if canonical, ok := headerAliases[camelToSnake(trimmed)]; ok {
		return canonical
	}
	return lower
}

// NormalizeRows rewrites every row keyed by canonical header names.
// When two raw headers collapse to the same canonical name the later
// column wins.
func NormalizeRows(headers []string, rows []Row) ([]string, []Row) {
	canonical := make([]string, len(headers))
	for i, h := range headers {
		canonical[i] = CanonicalHeader(h)
	}

	normalized := make([]Row, len(rows))
	for i, row := range rows {
		out := make(Row, len(headers))
		for j, h := range headers {
			out[canonical[j]] = row[h]
		}
		normalized[i] = out
	}
	return canonical, normalized
}

func camelToSnake(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
