package formatter

import "strings"

// toBoolean interprets "true" and "false" in any case, ignoring
// surrounding whitespace. Anything else yields def.
func toBoolean(value string, def bool) bool {
	v := strings.TrimSpace(value)
	switch {
	case strings.EqualFold(v, "true"):
		return true
	case strings.EqualFold(v, "false"):
		return false
	default:
		return def
	}
}
