package extract

import (
	"regexp"
	"sort"
	"strings"
)

// addressPattern matches one email address: a local part of alphanumerics and
// ._%+- characters, an @, one or more alphanumeric/hyphen domain labels each
// terminated by a dot, and a final TLD label of at least two letters. Word
// boundaries keep trailing punctuation out of the match, and the label shape
// rejects empty labels such as the middle of "a@b..co".
var addressPattern = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@(?:[a-z0-9-]+\.)+[a-z]{2,}\b`)

// Addresses returns the distinct email addresses found in text, lower-cased
// and sorted. Text with no addresses, including the empty string, yields an
// empty slice. The function is pure; it never fails on malformed input.
func Addresses(text string) []string {
	if text == "" {
		return nil
	}

	matches := addressPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	addrs := make([]string, 0, len(matches))
	for _, m := range matches {
		addr := strings.ToLower(m)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		addrs = append(addrs, addr)
	}

	sort.Strings(addrs)
	return addrs
}
