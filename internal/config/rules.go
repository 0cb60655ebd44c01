package config

// RuleConfig holds phrase list overrides for the rule set.
// An empty list means "use the built-in defaults".
type RuleConfig struct {
	// TriggerPhrases flag link and button text such as "click here".
	TriggerPhrases []string `yaml:"triggerPhrases,omitempty"`

	// ExcludedPhrases suppress a match, e.g. "learn more about us".
	ExcludedPhrases []string `yaml:"excludedPhrases,omitempty"`

	// IconClassPatterns mark icon-only buttons when found in a class attribute.
	IconClassPatterns []string `yaml:"iconClassPatterns,omitempty"`

	// WholeWord matches phrases only on word boundaries instead of as substrings.
	WholeWord bool `yaml:"wholeWord,omitempty"`
}

// Merge returns rc with every non-empty list in override replacing its own.
// WholeWord is enabled when either side enables it.
func (rc RuleConfig) Merge(override RuleConfig) RuleConfig {
	result := rc
	if len(override.TriggerPhrases) > 0 {
		result.TriggerPhrases = override.TriggerPhrases
	}
	if len(override.ExcludedPhrases) > 0 {
		result.ExcludedPhrases = override.ExcludedPhrases
	}
	if len(override.IconClassPatterns) > 0 {
		result.IconClassPatterns = override.IconClassPatterns
	}
	if override.WholeWord {
		result.WholeWord = true
	}
	return result
}
