package rules

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// DefaultTriggerPhrases mark link and button text that does not describe
// its destination or action.
var DefaultTriggerPhrases = []string{
	"click here",
	"read more",
	"learn more",
	"go here",
	"see more",
	"click",
	"details",
	"see details",
	"more",
	"see all",
	"view all",
}

// DefaultExcludedPhrases suppress a trigger match. "learn more about us"
// names its destination even though it contains "learn more".
var DefaultExcludedPhrases = []string{
	"learn more about us",
}

// DefaultIconClassPatterns are class substrings used by common icon fonts.
var DefaultIconClassPatterns = []string{
	"icon",
	"fa-",
	"glyphicon",
	"material-icons",
}

// Phrases holds the normalized phrase lists shared by the link and button rules.
//
// Matching is a substring check on normalized text, so "more" matches
// "moreover" and "learn more about us" excludes "learn more about usability".
// WholeWord restricts both checks to whole-word sequences.
type Phrases struct {
	Trigger     []string
	Excluded    []string
	IconClasses []string
	WholeWord   bool
}

// DefaultPhrases returns a fresh copy of the default phrase lists.
func DefaultPhrases() *Phrases {
	return &Phrases{
		Trigger:     normalizeAll(DefaultTriggerPhrases),
		Excluded:    normalizeAll(DefaultExcludedPhrases),
		IconClasses: append([]string(nil), DefaultIconClassPatterns...),
	}
}

// Normalize case-folds s, turns punctuation into spaces and collapses whitespace.
// "  Click HERE! " becomes "click here".
func Normalize(s string) string {
	// A Caser is stateful, so one is made per call.
	folded := cases.Fold().String(s)
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Join(strings.Fields(mapped), " ")
}

func normalizeAll(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// contains reports whether normalized text contains phrase.
func (p *Phrases) contains(text, phrase string) bool {
	if p.WholeWord {
		return strings.Contains(" "+text+" ", " "+phrase+" ")
	}
	return strings.Contains(text, phrase)
}

// IsExcluded reports whether normalized text contains an excluded phrase.
func (p *Phrases) IsExcluded(text string) bool {
	for _, phrase := range p.Excluded {
		if p.contains(text, phrase) {
			return true
		}
	}
	return false
}

// MatchTrigger returns the first trigger phrase contained in normalized text.
func (p *Phrases) MatchTrigger(text string) (string, bool) {
	for _, phrase := range p.Trigger {
		if p.contains(text, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// IsVague reports whether raw text triggers a phrase and is not excluded.
func (p *Phrases) IsVague(raw string) bool {
	text := Normalize(raw)
	if text == "" || p.IsExcluded(text) {
		return false
	}
	_, ok := p.MatchTrigger(text)
	return ok
}

// hasIconClass reports whether a class attribute contains an icon pattern.
func (p *Phrases) hasIconClass(class string) bool {
	for _, token := range strings.Fields(strings.ToLower(class)) {
		for _, pattern := range p.IconClasses {
			if strings.Contains(token, strings.ToLower(pattern)) {
				return true
			}
		}
	}
	return false
}
