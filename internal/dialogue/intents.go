package dialogue

import "strings"

// Intent is the classified meaning of one utterance.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentYes
	IntentNo
	IntentBook
	IntentStatus
	IntentCancel
	IntentQuit
)

var intentKeywords = []struct {
	intent Intent
	words  []string
}{
	{IntentQuit, []string{"quit", "exit", "goodbye", "bye"}},
	{IntentCancel, []string{"cancel", "remove", "delete"}},
	{IntentStatus, []string{"status", "check", "ready"}},
	{IntentBook, []string{"book", "appointment", "service", "schedule"}},
	{IntentYes, []string{"yes", "correct", "right", "yeah", "yep", "sure"}},
	{IntentNo, []string{"no", "wrong", "nope", "incorrect"}},
}

// ClassifyIntent maps an utterance to an intent by keyword match. The
// first matching group wins, so "cancel my appointment" classifies as
// cancel rather than book.
func ClassifyIntent(utterance string) Intent {
	lowered := strings.ToLower(utterance)
	for _, group := range intentKeywords {
		for _, word := range group.words {
			if containsWord(lowered, word) {
				return group.intent
			}
		}
	}
	return IntentUnknown
}

// isAffirmative reports whether the utterance confirms the previous
// prompt. Used at every "say yes or no" stage.
func isAffirmative(utterance string) bool {
	return ClassifyIntent(utterance) == IntentYes
}

// isNegative reports whether the utterance declines or says thanks,
// which at the final stage means the caller is done.
func isNegative(utterance string) bool {
	lowered := strings.ToLower(utterance)
	if strings.Contains(lowered, "thank") {
		return true
	}
	return ClassifyIntent(lowered) == IntentNo
}

func containsWord(s, word string) bool {
	for start := 0; ; {
		idx := strings.Index(s[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)
		leftOK := idx == 0 || !isWordChar(s[idx-1])
		rightOK := end == len(s) || !isWordChar(s[end])
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
