package urlkit

import "strings"

// isIdentByte reports whether b can appear in a "$name" token.
func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// Substitute expands every "$name" token in url using vars. A nil or empty
// vars returns url unchanged. An identifier not present in vars is left
// literal, "$" included. Substituted values are never re-scanned for
// further "$name" tokens.
func Substitute(url string, vars map[string]string) string {
	if len(vars) == 0 || !strings.ContainsRune(url, '$') {
		return url
	}

	var b strings.Builder
	b.Grow(len(url))

	for i := 0; i < len(url); i++ {
		c := url[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}

		j := i + 1
		for j < len(url) && isIdentByte(url[j]) {
			j++
		}
		name := url[i+1 : j]
		if val, ok := vars[name]; ok {
			b.WriteString(val)
		} else {
			b.WriteString(url[i:j])
		}
		i = j - 1
	}

	return b.String()
}
