package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// Every document write ends with the same column list.
	queryReturningRegex = regexp.MustCompile(`(?i)\s+RETURNING\s+[\w\s,.]+$`)
)

// formatDBQueryForTrace turns a document store statement into a single line
// span attribute.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = queryReturningRegex.ReplaceAllString(normalized, "")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
