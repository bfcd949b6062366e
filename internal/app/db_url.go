package app

import (
	"net/url"
	"strings"
)

// postgresDSN adds the connection parameters the document store relies on
// without overriding anything already present in raw. Both URL and keyword
// DSN forms are accepted.
func postgresDSN(raw, applicationName string, disablePreparedBinaryResult bool) string {
	raw = strings.TrimSpace(raw)
	params := make([][2]string, 0, 2)
	if applicationName = strings.TrimSpace(applicationName); applicationName != "" {
		params = append(params, [2]string{"application_name", applicationName})
	}
	if disablePreparedBinaryResult {
		params = append(params, [2]string{"disable_prepared_binary_result", "yes"})
	}
	if len(params) == 0 {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		query := parsed.Query()
		changed := false
		for _, p := range params {
			if query.Get(p[0]) == "" {
				query.Set(p[0], p[1])
				changed = true
			}
		}
		if changed {
			parsed.RawQuery = query.Encode()
		}
		return parsed.String()
	}

	out := raw
	for _, p := range params {
		if keywordValue(raw, p[0]) != "" {
			continue
		}
		out += " " + p[0] + "='" + strings.ReplaceAll(p[1], "'", `\'`) + "'"
	}
	return strings.TrimSpace(out)
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}
	return keywordValue(trimmed, "dbname")
}

func keywordValue(dsn, key string) string {
	for _, token := range strings.Fields(dsn) {
		value, ok := strings.CutPrefix(token, key+"=")
		if !ok {
			continue
		}
		if value = strings.Trim(strings.TrimSpace(value), `"'`); value != "" {
			return value
		}
	}
	return ""
}
