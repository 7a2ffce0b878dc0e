package announce

import "strings"

// ChooseOption picks the dropdown entry for target: an exact match first,
// otherwise the first option that contains target or is contained in it,
// ignoring case. Blank options never match.
func ChooseOption(options []string, target string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}
	for _, o := range options {
		if strings.TrimSpace(o) == target {
			return o, true
		}
	}
	lt := strings.ToLower(target)
	for _, o := range options {
		lo := strings.ToLower(strings.TrimSpace(o))
		if lo == "" {
			continue
		}
		if strings.Contains(lo, lt) || strings.Contains(lt, lo) {
			return o, true
		}
	}
	return "", false
}

// ChooseAllWords picks the first option containing every word, ignoring case.
func ChooseAllWords(options []string, words []string) (string, bool) {
	if len(words) == 0 {
		return "", false
	}
next:
	for _, o := range options {
		lo := strings.ToLower(o)
		for _, w := range words {
			if !strings.Contains(lo, strings.ToLower(w)) {
				continue next
			}
		}
		return o, true
	}
	return "", false
}
