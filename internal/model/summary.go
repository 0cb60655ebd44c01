package model

import (
	"sort"
)

// CategoryCount pairs a category with the number of findings in it.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// URLCount pairs an audited URL with its issue and finding totals.
type URLCount struct {
	URL      string `json:"url"`
	Issues   int    `json:"issues"`
	Findings int    `json:"findings"`
}

// Summary aggregates the findings of one run for reporting.
type Summary struct {
	State      RunState        `json:"state"`
	Findings   []Finding       `json:"findings"`
	ByCategory []CategoryCount `json:"by_category"`
	ByURL      []URLCount      `json:"by_url"`
}

// TotalIssues returns the number of findings that describe problems.
func (s *Summary) TotalIssues() int {
	total := 0
	for _, cc := range s.ByCategory {
		if cc.Category.Info().Issue {
			total += cc.Count
		}
	}
	return total
}

// NewSummary builds a summary by counting findings in memory.
// Categories with zero findings are omitted. URLs are sorted by issue
// count, descending, then by URL.
func NewSummary(state RunState, findings []Finding) *Summary {
	byCat := make(map[Category]int)
	byURL := make(map[string]*URLCount)
	for _, f := range findings {
		byCat[f.Category]++
		uc, ok := byURL[f.SourceURL]
		if !ok {
			uc = &URLCount{URL: f.SourceURL}
			byURL[f.SourceURL] = uc
		}
		uc.Findings++
		if f.IsIssue() {
			uc.Issues++
		}
	}

	s := &Summary{
		State:    state,
		Findings: findings,
	}
	for _, c := range Categories {
		if n := byCat[c]; n > 0 {
			s.ByCategory = append(s.ByCategory, CategoryCount{Category: c, Count: n})
		}
	}
	for _, uc := range byURL {
		s.ByURL = append(s.ByURL, *uc)
	}
	SortURLCounts(s.ByURL)
	return s
}

// SortURLCounts orders URL counts by issues descending, then URL ascending.
func SortURLCounts(counts []URLCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Issues != counts[j].Issues {
			return counts[i].Issues > counts[j].Issues
		}
		return counts[i].URL < counts[j].URL
	})
}
