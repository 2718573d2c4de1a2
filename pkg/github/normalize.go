package github

import (
	"regexp"
	"strings"
)

var urlPrefixRe = regexp.MustCompile(`^https?:`)

// NormalizeLogin turns an operator-typed account identifier into a bare
// login. A leading "@" is dropped, and for anything that looks like a URL
// the segment after the last "/" is used. Any other input is returned
// unchanged, so normalizing an already-bare login is a no-op.
func NormalizeLogin(val string) string {
	res := val
	if strings.HasPrefix(res, "@") {
		res = res[1:]
	}
	if urlPrefixRe.MatchString(res) {
		if i := strings.LastIndex(res, "/"); i >= 0 {
			res = res[i+1:]
		}
	}
	return res
}
