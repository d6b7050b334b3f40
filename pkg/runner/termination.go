package runner

import "regexp"

var terminationWords = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])(no|basta|esci|niente|stop)($|[^\p{L}\p{N}_])`)

// IsTermination reports whether a line contains one of the words that end the
// conversation. Words match on boundaries: "stop" ends it, "stopmotion" does not.
func IsTermination(line string) bool {
	return terminationWords.MatchString(line)
}
