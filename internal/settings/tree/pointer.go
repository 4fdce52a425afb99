package tree

import "strings"

// FormatPointer joins components into an RFC 6901 JSON Pointer,
// escaping "~" and "/" in each component. The empty sequence formats
// to "" (the whole-document pointer). This is the canonical form for
// serialization; dotted paths are a display convenience.
func FormatPointer(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range parts {
		b.WriteByte('/')
		b.WriteString(escapeSegment(part))
	}
	return b.String()
}

func parsePointer(pointer string) []string {
	trimmed := strings.TrimPrefix(pointer, "/")
	segments := strings.Split(trimmed, "/")
	for i, seg := range segments {
		segments[i] = unescapeSegment(seg)
	}
	return segments
}

func escapeSegment(seg string) string {
	seg = strings.ReplaceAll(seg, "~", "~0")
	seg = strings.ReplaceAll(seg, "/", "~1")
	return seg
}

// unescapeSegment reverses escapeSegment. "~1" must be replaced before
// "~0" so that "~01" decodes to "~1" and not "/".
func unescapeSegment(seg string) string {
	seg = strings.ReplaceAll(seg, "~1", "/")
	seg = strings.ReplaceAll(seg, "~0", "~")
	return seg
}
