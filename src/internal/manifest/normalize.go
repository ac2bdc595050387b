package manifest

import (
	"strings"
	"unicode"
)

// NormalizeName converts a package name to kebab-case: underscores become dashes,
// each uppercase letter becomes a dash followed by its lowercase form, and leading
// dashes are stripped. "MyTool_cli" becomes "my-tool-cli".
func NormalizeName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '_':
			sb.WriteRune('-')
		case unicode.IsUpper(r):
			sb.WriteRune('-')
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)
		}
	}
	return strings.TrimLeft(sb.String(), "-")
}
