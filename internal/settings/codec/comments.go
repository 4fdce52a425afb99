package codec

import (
	"strings"
)

// ExtractComments scans a commented-JSON document and maps each comment
// run to the dotted path of the key that follows it. A comment on the
// same line as a value attaches to the key that owns the value; a blank
// line breaks the association. Keys inside arrays carry no path and are
// skipped. The scan is best-effort display metadata and never fails.
func ExtractComments(data []byte) map[string]string {
	out := make(map[string]string)

	var (
		stack       []string // enclosing object keys, "" for anonymous
		pending     []string // comment lines awaiting the next key
		lastKey     string   // key awaiting its opening brace
		haveKey     bool
		lastPath    string // most recent key path, for trailing comments
		arrayDepth  int
		lineToken   bool // current line saw a non-comment token
		lineComment bool
	)

	attach := func(text string) {
		if text == "" {
			return
		}
		if lineToken && lastPath != "" {
			if prev := out[lastPath]; prev != "" {
				out[lastPath] = prev + " " + text
			} else {
				out[lastPath] = text
			}
			return
		}
		pending = append(pending, text)
	}

	i, n := 0, len(data)
	for i < n {
		c := data[i]
		switch {
		case c == '/' && i+1 < n && data[i+1] == '/':
			j := i + 2
			for j < n && data[j] != '\n' {
				j++
			}
			attach(strings.TrimSpace(string(data[i+2 : j])))
			lineComment = true
			i = j

		case c == '/' && i+1 < n && data[i+1] == '*':
			j := i + 2
			for j+1 < n && !(data[j] == '*' && data[j+1] == '/') {
				j++
			}
			for _, ln := range strings.Split(string(data[i+2:j]), "\n") {
				ln = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ln), "*"))
				attach(ln)
			}
			lineComment = true
			i = j + 2

		case c == '"':
			s, next := readString(data, i)
			i = next
			k := i
			for k < n && isSpace(data[k]) {
				k++
			}
			if k < n && data[k] == ':' {
				if arrayDepth == 0 {
					path := pathOf(stack, s)
					if len(pending) > 0 {
						out[path] = strings.Join(pending, " ")
					}
					lastKey, haveKey = s, true
					lastPath = path
				}
				pending = pending[:0]
				i = k + 1
			}
			lineToken = true

		case c == '{':
			if arrayDepth == 0 {
				if haveKey {
					stack = append(stack, lastKey)
					haveKey = false
				} else {
					stack = append(stack, "")
				}
			}
			pending = pending[:0]
			lineToken = true
			i++

		case c == '}':
			if arrayDepth == 0 && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			haveKey = false
			pending = pending[:0]
			lineToken = true
			i++

		case c == '[':
			arrayDepth++
			pending = pending[:0]
			lineToken = true
			i++

		case c == ']':
			if arrayDepth > 0 {
				arrayDepth--
			}
			pending = pending[:0]
			lineToken = true
			i++

		case c == '\n':
			if !lineToken && !lineComment {
				pending = pending[:0]
			}
			lineToken, lineComment = false, false
			i++

		case isSpace(c):
			i++

		default:
			// Literals, numbers, commas.
			lineToken = true
			i++
		}
	}

	return out
}

func pathOf(stack []string, key string) string {
	parts := make([]string, 0, len(stack)+1)
	for _, s := range stack {
		if s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, key)
	return strings.Join(parts, ".")
}

// readString consumes a quoted string starting at data[i] == '"' and
// returns its contents and the index just past the closing quote.
// Escape sequences are passed through unprocessed except that the
// escaped character never terminates the string.
func readString(data []byte, i int) (string, int) {
	var sb strings.Builder
	j := i + 1
	for j < len(data) {
		c := data[j]
		if c == '\\' && j+1 < len(data) {
			sb.WriteByte(data[j+1])
			j += 2
			continue
		}
		if c == '"' {
			return sb.String(), j + 1
		}
		sb.WriteByte(c)
		j++
	}
	return sb.String(), j
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}
