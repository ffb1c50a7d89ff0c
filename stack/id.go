package stack

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

// MaxLogicalIDLength is the CloudFormation limit on logical ID length.
const MaxLogicalIDLength = 255

// ConstructID joins parts into a PascalCase alphanumeric logical ID:
//
//	ConstructID("main", "private-subnet", "1") → "MainPrivateSubnet1"
func ConstructID(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(strcase.ToCamel(sanitize(p)))
	}
	return TruncateWithSemiHash(sb.String(), MaxLogicalIDLength)
}

// sanitize replaces characters CloudFormation does not accept in logical IDs
// with word separators so strcase capitalizes the following word.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return ' '
	}, s)
}

// TruncateWithSemiHash shortens s to max characters, replacing the tail with
// a hash of the full value so distinct long IDs stay distinct.
func TruncateWithSemiHash(s string, max int) string {
	if len(s) <= max {
		return s
	}
	sum := sha256.Sum256([]byte(s))
	hash := strings.ToUpper(hex.EncodeToString(sum[:])[:8])
	if max <= len(hash) {
		return hash[:max]
	}
	return s[:max-len(hash)] + hash
}
