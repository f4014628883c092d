package wizard

import (
	"encoding/json"
	"regexp"
)

// tagArrayPattern matches the first bracketed substring of a response,
// spanning newlines so pretty-printed arrays survive.
var tagArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// ExtractTagArray pulls a JSON array of strings out of a raw model
// response. The model is instructed to reply with only the array, but in
// practice it may wrap it in prose; the regexp is a deliberate tolerance
// layer for that. Any shape of failure — no brackets, invalid JSON,
// non-string elements — yields an empty list. Tag suggestion is a
// convenience path and must never fail past this boundary.
func ExtractTagArray(raw string) []string {
	match := tagArrayPattern.FindString(raw)
	if match == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(match), &tags); err != nil {
		return []string{}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}

// FilterToVocabulary drops suggested tags that are not in the supplied
// vocabulary, preserving suggestion order.
func FilterToVocabulary(tags, vocabulary []string) []string {
	allowed := make(map[string]bool, len(vocabulary))
	for _, v := range vocabulary {
		allowed[v] = true
	}
	out := []string{}
	for _, t := range tags {
		if allowed[t] {
			out = append(out, t)
		}
	}
	return out
}
