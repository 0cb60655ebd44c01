package model

// Finding is a single accessibility observation about one page.
// It is created by a rule and never modified afterwards.
//
// Design decision: All string fields are plain strings rather than pointers.
// An empty string means "not applicable" so consumers never check for nil.
type Finding struct {
	// SourceURL is the audited page the finding was produced for.
	SourceURL string `json:"source_url"`

	// Category is the kind of finding.
	Category Category `json:"category"`

	// Details is a human-readable explanation, e.g. `alt="Logo"`.
	Details string `json:"details"`

	// LinkText is the visible text of the offending link or button.
	LinkText string `json:"link_text"`

	// TargetURL is the link destination or image source.
	TargetURL string `json:"target_url"`

	// ImageFilename is the last path segment of an image source.
	ImageFilename string `json:"image_filename"`
}

// IsIssue reports whether the finding describes a problem rather than
// informational inventory.
func (f Finding) IsIssue() bool {
	return f.Category.Info().Issue
}
