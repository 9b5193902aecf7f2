package commitment

import "strings"

// waitingOnPhrases mark a request directed at someone else.
var waitingOnPhrases = []string{
	"please send",
	"can you provide",
	"waiting for",
	"need from you",
	"when will",
}

// ClassifyIntent returns TypeWaitingOn when text asks someone else for
// something, TypeIOwe otherwise.
func ClassifyIntent(text string) Type {
	if _, ok := matchWaitingOn(text); ok {
		return TypeWaitingOn
	}
	return TypeIOwe
}

func matchWaitingOn(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range waitingOnPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}
