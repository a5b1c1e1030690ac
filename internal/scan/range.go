// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package scan

import (
	"strconv"
	"strings"
)

// HostsPerRange is the number of candidates of a /24: .1 through .254.
const HostsPerRange = 254

// ParseRange extracts the /24 prefix ("a.b.c") from range text such as
// "10.46.197.0/24", "10.46.197" or "10.46.197.15". Anything after a '/'
// is ignored; the scan always covers the whole /24 of the first three
// octets.
func ParseRange(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '/'); i >= 0 {
		text = text[:i]
	}
	parts := strings.Split(text, ".")
	if len(parts) < 3 || len(parts) > 4 {
		return "", false
	}
	for _, p := range parts {
		if !validOctet(p) {
			return "", false
		}
	}
	return strings.Join(parts[:3], "."), true
}

// Candidates returns prefix.1 .. prefix.254 in ascending order, or nil for
// malformed range text.
func Candidates(text string) []string {
	prefix, ok := ParseRange(text)
	if !ok {
		return nil
	}
	out := make([]string, 0, HostsPerRange)
	for i := 1; i <= HostsPerRange; i++ {
		out = append(out, prefix+"."+strconv.Itoa(i))
	}
	return out
}

func validOctet(s string) bool {
	if len(s) == 0 || len(s) > 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(s)
	return err == nil && n <= 255
}
