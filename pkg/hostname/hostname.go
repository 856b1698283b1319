// Package hostname validates hostnames and derives DNSimple zone and record
// names from them.
package hostname

import "strings"

// maxHostnameLen and maxLabelLen follow RFC 1035 limits.
const (
	maxHostnameLen = 253
	maxLabelLen    = 63
)

// isAlphaNum returns true if the byte is an ASCII letter or digit.
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Validate reports whether name is a usable hostname: dot-separated labels of
// 1-63 alphanumeric-and-hyphen characters starting and ending alphanumeric,
// at least two labels, 253 characters total at most. A single wildcard label
// is allowed, but only as the first label ("*.example.com").
func Validate(name string) bool {
	if name == "" || len(name) > maxHostnameLen {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") || strings.Contains(name, "..") {
		return false
	}

	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return false
	}

	for i, label := range labels {
		if label == "" || len(label) > maxLabelLen {
			return false
		}
		if label == "*" {
			if i != 0 {
				return false
			}
			continue
		}
		if !isAlphaNum(label[0]) || !isAlphaNum(label[len(label)-1]) {
			return false
		}
		for j := 0; j < len(label); j++ {
			if !isAlphaNum(label[j]) && label[j] != '-' {
				return false
			}
		}
	}
	return true
}

// Split derives the zone and record name from a validated hostname. The zone
// is the last two labels; the record name is everything before them, or the
// empty string for an apex hostname ("example.com" → "example.com", "").
// Wildcards stay in the record name ("*.sub.example.com" → "*.sub").
//
// Split assumes name already passed Validate.
func Split(name string) (zone, record string) {
	labels := strings.Split(name, ".")
	zone = strings.Join(labels[len(labels)-2:], ".")
	if len(labels) > 2 {
		record = strings.Join(labels[:len(labels)-2], ".")
	}
	return zone, record
}
