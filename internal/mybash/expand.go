package mybash

import (
	"strings"
)

// expand substitutes every `$name` and `${name}` in text, then looks the
// whole result up once as a variable name so that `echo age` prints the
// value of age. The substituted text is returned when no such variable
// exists.
func (e *Executor) expand(text string) Value {
	substituted := e.interpolate(text)
	if v, ok := e.vars[substituted]; ok {
		return v
	}
	return StrValue(substituted)
}

func (e *Executor) interpolate(text string) string {
	if !strings.Contains(text, "$") {
		return text
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		if text[i] != '$' {
			b.WriteByte(text[i])
			i++
			continue
		}

		name, width := referenceAt(text[i:])
		if width == 0 {
			b.WriteByte('$')
			i++
			continue
		}
		b.WriteString(e.reference(name))
		i += width
	}
	return b.String()
}

// referenceAt reads a reference at the start of s, which begins with '$'.
// It returns the referenced name and the number of bytes consumed, or a
// zero width when s does not start with a reference.
func referenceAt(s string) (string, int) {
	if strings.HasPrefix(s, "${") {
		end := strings.IndexByte(s, '}')
		if end <= 2 {
			return "", 0
		}
		return s[2:end], end + 1
	}

	end := 1
	for end < len(s) && isNameByte(s[end]) {
		end++
	}
	if end == 1 {
		return "", 0
	}
	return s[1:end], end
}

// reference resolves a name: variables first, then positional arguments
// for all-digit names, then the process environment. Unknown names expand
// to nothing.
func (e *Executor) reference(name string) string {
	if v, ok := e.vars[name]; ok {
		return v.String()
	}
	if isDigits(name) {
		if n := positionalIndex(name); n >= 0 && n+1 < len(e.inv.Args) {
			return e.inv.Args[n+1]
		}
	}
	if e.inv.LookupEnv != nil {
		if v, ok := e.inv.LookupEnv(name); ok {
			return v
		}
	}
	return ""
}

// operand resolves one side of a comparison.
func (e *Executor) operand(text string) Value {
	if v, ok := e.vars[text]; ok {
		return v
	}
	if strings.Contains(text, "$") {
		text = e.interpolate(text)
	}
	return literal(text)
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// positionalIndex converts an all-digit name, or -1 when it overflows.
func positionalIndex(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<20 {
			return -1
		}
	}
	return n
}
