package ai

import (
	"regexp"
	"strings"
)

// fieldLineRegex matches "KEY: value" lines, tolerating list bullets, headings
// and bold markers around the key.
var fieldLineRegex = regexp.MustCompile(`^[\s*_#>\-]*([A-Za-z][A-Za-z _]*?)[\s*_]*:[\s*_]*(.*?)[\s*_]*$`)

// scanFields reads KEY: value lines from a model response. Keys are matched
// case-insensitively with spaces treated as underscores; the first occurrence of
// a key wins. Keys listed in multiline also collect the following lines up to the
// next key or a blank line.
func scanFields(text string, keys []string, multiline ...string) map[string]string {
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	continued := make(map[string]bool, len(multiline))
	for _, k := range multiline {
		continued[k] = true
	}

	fields := make(map[string]string, len(keys))
	current := ""
	for _, line := range strings.Split(text, "\n") {
		if m := fieldLineRegex.FindStringSubmatch(line); m != nil {
			key := normalizeFieldKey(m[1])
			if wanted[key] {
				current = ""
				if _, seen := fields[key]; seen {
					continue
				}
				fields[key] = strings.TrimSpace(m[2])
				if continued[key] {
					current = key
				}
				continue
			}
		}

		if current == "" {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if fields[current] != "" {
				current = ""
			}
			continue
		}
		if fields[current] == "" {
			fields[current] = trimmed
		} else {
			fields[current] += " " + trimmed
		}
	}
	return fields
}

func normalizeFieldKey(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(strings.ReplaceAll(raw, "_", " ")), "_"))
}

// unquote strips wrapping quotes and brackets a model puts around a value.
func unquote(value string) string {
	v := strings.TrimSpace(value)
	for len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') ||
			(first == '[' && last == ']') || (first == '<' && last == '>') {
			v = strings.TrimSpace(v[1 : len(v)-1])
			continue
		}
		break
	}
	return v
}
