package steps

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTable is queried by the fallback rules when no table is configured.
const DefaultTable = "crimes311"

var (
	sqlPrefix = regexp.MustCompile(`(?is)^\s*(?:` +
		`select\b` +
		`|with\s+(?:recursive\s+)?[\w"]+(?:\s*\([^)]*\))?\s+as\b` +
		`|explain\s+(?:\([^)]*\)\s*|analyze\s+|verbose\s+)*(?:select|with)\b` +
		`|(?:show|describe)\s+[\w."]+\s*;?\s*$` +
		`|--)`)
	limitWord = regexp.MustCompile(`(?i)\blimit\b`)
	fenced    = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)```")
)

// LooksLikeSQL reports whether text is already a SQL statement rather than a question.
func LooksLikeSQL(text string) bool {
	return sqlPrefix.MatchString(text)
}

// ExtractSQL strips markdown code fences and surrounding whitespace from a model reply.
func ExtractSQL(reply string) string {
	if m := fenced.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(reply)
}

// CheckReadOnly fails unless sql starts with SELECT or WITH.
func CheckReadOnly(sql string) error {
	head := strings.ToLower(strings.TrimSpace(sql))
	if strings.HasPrefix(head, "select") || strings.HasPrefix(head, "with") {
		return nil
	}
	return fmt.Errorf("model did not return a SELECT/CTE query")
}

// TranslationKey scopes a cached translation to the table and model that produced it.
func TranslationKey(table, model, question string) string {
	return table + "|" + model + "|" + question
}

// EnforceLimit appends a LIMIT clause when sql has none.
func EnforceLimit(sql string, limit int) string {
	if limit <= 0 || limitWord.MatchString(sql) {
		return sql
	}
	return fmt.Sprintf("%s LIMIT %d", strings.TrimRight(strings.TrimSpace(sql), ";"), limit)
}

// FallbackQuery maps a question to SQL with keyword rules. It never fails.
func FallbackQuery(question, table string) string {
	if table == "" {
		table = DefaultTable
	}
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "top") && strings.Contains(q, "request") && strings.Contains(q, "count"):
		return fmt.Sprintf("SELECT case_title, COUNT(*) AS count FROM %s GROUP BY case_title ORDER BY count DESC LIMIT 5", table)
	case strings.Contains(q, "total") && (strings.Contains(q, "records") || strings.Contains(q, "rows") || strings.Contains(q, "count")):
		return fmt.Sprintf("SELECT COUNT(*) AS total_records FROM %s", table)
	case strings.Contains(q, "recent") || strings.Contains(q, "latest"):
		return fmt.Sprintf("SELECT * FROM %s ORDER BY open_dt DESC NULLS LAST LIMIT 10", table)
	case strings.Contains(q, "district"):
		return fmt.Sprintf("SELECT police_district, COUNT(*) AS count FROM %s WHERE police_district IS NOT NULL GROUP BY police_district ORDER BY count DESC LIMIT 10", table)
	}
	return fmt.Sprintf("SELECT * FROM %s LIMIT 5", table)
}
