package history

import (
	"bytes"
	"strings"
)

// PostgreSQL rejects NUL in TEXT values and the \u0000 escape in JSONB. Both
// are stored as U+FFFD so that any content passing the guardrails is recorded.
const nulReplacement = "�"

func pgText(s string) string {
	if strings.IndexByte(s, 0) < 0 {
		return s
	}
	return strings.ReplaceAll(s, "\x00", nulReplacement)
}

func pgTexts(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = pgText(v)
	}
	return out
}

// pgJSON rewrites \u0000 escapes in encoded JSON. An escaped backslash
// followed by "u0000" is literal text and is left alone.
func pgJSON(raw []byte) []byte {
	if !bytes.Contains(raw, []byte(`\u0000`)) {
		return raw
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out = append(out, raw[i])
			continue
		}
		if bytes.HasPrefix(raw[i:], []byte(`\u0000`)) {
			out = append(out, `�`...)
			i += len(`\u0000`) - 1
			continue
		}
		out = append(out, raw[i], raw[i+1])
		i++
	}
	return out
}
