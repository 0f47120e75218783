package normalize

import (
	"regexp"
	"strings"
)

// trfPattern matches a structured reference token embedded in free text:
// the literal marker TRF followed by one or more pipe-delimited segments,
// e.g. "Payment ref: TRF|ABC|123 confirmed" -> "TRF|ABC|123".
var trfPattern = regexp.MustCompile(`(?i)\b(TRF\|[^\s|]+(?:\|[^\s|]+)*)\b`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Reference normalizes a transaction reference for matching: trims, pulls
// an embedded TRF token out of surrounding free text when extractTRF is
// set, uppercases, and collapses internal whitespace runs to single
// spaces. Blank input yields the empty string.
func Reference(ref string, extractTRF bool) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if extractTRF {
		if m := trfPattern.FindString(ref); m != "" {
			ref = m
		}
	}

	ref = strings.ToUpper(ref)
	ref = whitespaceRun.ReplaceAllString(ref, " ")

	return ref
}

// ReferenceParts normalizes a reference and splits it on the pipe
// delimiter, dropping blank segments.
//
//	ReferenceParts("TRF|MONIEPOINT|123456|NGN")
//	// -> ["TRF", "MONIEPOINT", "123456", "NGN"]
func ReferenceParts(ref string) []string {
	normalized := Reference(ref, true)
	if normalized == "" {
		return nil
	}

	var parts []string
	for _, part := range strings.Split(normalized, "|") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
