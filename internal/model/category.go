package model

import (
	"fmt"
)

// Category identifies the kind of a finding.
// The set is closed: every rule emits one of these values.
//
// Design decision: We use iota-based constants rather than string constants
// for cheap comparisons and stable ordering in reports. The String() method
// provides the machine-readable name used in JSON and in the result store.
type Category int

const (
	// CategoryImageMissingAlt marks an image whose alt attribute is absent or blank.
	CategoryImageMissingAlt Category = iota

	// CategoryImageWithAlt marks an image that carries alt text.
	// This is informational; reviewers still judge the quality of the text.
	CategoryImageWithAlt

	// CategoryInaccessibleLink marks non-descriptive link text or a raw URL in page text.
	CategoryInaccessibleLink

	// CategoryInaccessibleButton marks a button with no label, an icon-only
	// button, or a button with a vague label.
	CategoryInaccessibleButton

	// CategoryPdfLink marks a link to a PDF document.
	CategoryPdfLink

	// CategoryOfficeLink marks a link to a Word, Excel, or PowerPoint document.
	CategoryOfficeLink

	// CategoryTableInfo summarizes the structure of a data table.
	CategoryTableInfo

	// CategoryHeadingHierarchyIssue marks a page whose heading levels skip upward.
	CategoryHeadingHierarchyIssue
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryImageMissingAlt,
	CategoryImageWithAlt,
	CategoryInaccessibleLink,
	CategoryInaccessibleButton,
	CategoryPdfLink,
	CategoryOfficeLink,
	CategoryTableInfo,
	CategoryHeadingHierarchyIssue,
}

var categoryNames = map[Category]string{
	CategoryImageMissingAlt:       "image_missing_alt",
	CategoryImageWithAlt:          "image_with_alt",
	CategoryInaccessibleLink:      "inaccessible_link",
	CategoryInaccessibleButton:    "inaccessible_button",
	CategoryPdfLink:               "pdf_link",
	CategoryOfficeLink:            "office_link",
	CategoryTableInfo:             "table_info",
	CategoryHeadingHierarchyIssue: "heading_hierarchy_issue",
}

// String returns the machine-readable name of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler so categories serialize by name.
func (c Category) MarshalText() ([]byte, error) {
	if _, ok := categoryNames[c]; !ok {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory returns the category with the given machine-readable name.
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", name)
}

// CategoryInfo contains presentation metadata about a category.
type CategoryInfo struct {
	// Title is the human-readable name shown in reports.
	Title string

	// Issue is true when the category reports a problem rather than
	// informational inventory (images with alt text, tables, documents).
	Issue bool

	// Criterion is the related WCAG 2.1 success criterion.
	Criterion string

	// Recommendation describes how to fix or review the finding.
	Recommendation string
}

// categoryInfoMapping is the single source of truth for category metadata.
var categoryInfoMapping = map[Category]CategoryInfo{
	CategoryImageMissingAlt: {
		Title:          "Image Missing Alt Text",
		Issue:          true,
		Criterion:      "1.1.1 Non-text Content",
		Recommendation: "Add an alt attribute describing the image, or alt=\"\" with role=\"presentation\" for decorative images.",
	},
	CategoryImageWithAlt: {
		Title:          "Image With Alt Text",
		Criterion:      "1.1.1 Non-text Content",
		Recommendation: "Review the alt text for accuracy and brevity.",
	},
	CategoryInaccessibleLink: {
		Title:          "Inaccessible Link",
		Issue:          true,
		Criterion:      "2.4.4 Link Purpose (In Context)",
		Recommendation: "Use link text that describes the destination; avoid raw URLs and phrases like \"click here\".",
	},
	CategoryInaccessibleButton: {
		Title:          "Inaccessible Button",
		Issue:          true,
		Criterion:      "4.1.2 Name, Role, Value",
		Recommendation: "Give every button a descriptive accessible name via text, aria-label, or aria-labelledby.",
	},
	CategoryPdfLink: {
		Title:          "PDF Document Link",
		Criterion:      "2.4.4 Link Purpose (In Context)",
		Recommendation: "Verify the PDF is tagged and accessible, or provide an HTML alternative.",
	},
	CategoryOfficeLink: {
		Title:          "Office Document Link",
		Criterion:      "2.4.4 Link Purpose (In Context)",
		Recommendation: "Verify the document uses headings, alt text, and table headers, or provide an HTML alternative.",
	},
	CategoryTableInfo: {
		Title:          "Table Structure",
		Criterion:      "1.3.1 Info and Relationships",
		Recommendation: "Data tables should have a caption and header cells marked up with th.",
	},
	CategoryHeadingHierarchyIssue: {
		Title:          "Heading Hierarchy Issue",
		Issue:          true,
		Criterion:      "1.3.1 Info and Relationships",
		Recommendation: "Do not skip heading levels when nesting sections.",
	},
}

// Info returns the presentation metadata for the category.
func (c Category) Info() CategoryInfo {
	if info, ok := categoryInfoMapping[c]; ok {
		return info
	}
	return CategoryInfo{
		Title:          "Unknown",
		Recommendation: "Review manually.",
	}
}

// Title returns the human-readable category name.
func (c Category) Title() string {
	return c.Info().Title
}
