package media3d

import (
	"strings"
	"unicode"
)

// SanitizeName makes name a valid element name: letters, digits and
// underscores only, not starting with a digit. Invalid characters
// become '_', and a name whose first character cannot start a name
// also gets a '_' prefix, so "-x" becomes "__x".
func SanitizeName(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range name {
		if i == 0 && !isNameStart(r) {
			b.WriteByte('_')
		}
		if isNamePart(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNamePart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
