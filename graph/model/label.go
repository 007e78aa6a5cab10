package model

import (
	"fmt"
	"strings"
)

// MatchLabel validates a raw model answer against the allowed label
// set. The answer is normalized (whitespace, quotes, trailing
// punctuation, case) before comparison; if normalization does not
// produce an exact match, a unique substring occurrence of one label is
// accepted, since chatty models like to wrap the label in a sentence.
func MatchLabel(answer string, labels []string) (string, error) {
	normalized := strings.ToLower(strings.Trim(strings.TrimSpace(answer), "\"'`.!"))

	for _, l := range labels {
		if normalized == strings.ToLower(l) {
			return l, nil
		}
	}

	var found string
	for _, l := range labels {
		if strings.Contains(normalized, strings.ToLower(l)) {
			if found != "" {
				return "", fmt.Errorf("ambiguous label answer %q: matches both %q and %q", answer, found, l)
			}
			found = l
		}
	}
	if found != "" {
		return found, nil
	}
	return "", fmt.Errorf("label answer %q not in allowed set %v", answer, labels)
}
