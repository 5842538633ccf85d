package formatter

import "bytes"

// AppendEscapingTags writes s to buf with the markup-significant
// characters <, >, & and " replaced by their named entities. All other
// bytes, including multi-byte UTF-8 sequences, are copied unchanged.
func AppendEscapingTags(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		var entity string
		switch s[i] {
		case '<':
			entity = "&lt;"
		case '>':
			entity = "&gt;"
		case '&':
			entity = "&amp;"
		case '"':
			entity = "&quot;"
		default:
			continue
		}
		if start < i {
			buf.WriteString(s[start:i])
		}
		buf.WriteString(entity)
		start = i + 1
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

// EscapeTags returns s escaped as by AppendEscapingTags.
func EscapeTags(s string) string {
	if !needsEscape(s) {
		return s
	}
	var buf bytes.Buffer
	buf.Grow(len(s) + 16)
	AppendEscapingTags(&buf, s)
	return buf.String()
}

func needsEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '>', '&', '"':
			return true
		}
	}
	return false
}
