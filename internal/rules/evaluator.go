package rules

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/a11yscan/internal/model"
)

// Evaluator defines the interface for individual rules.
//
// Design decision: We use an interface list rather than a fixed set of
// functions because:
//  1. New rules can be registered without touching the orchestrator
//  2. Tests can inject failing or slow rules
//  3. The orchestrator can name the rule when isolating a failure
type Evaluator interface {
	// Name returns the rule's name for logging and error reporting.
	Name() string

	// Evaluate inspects doc, which was fetched from sourceURL.
	// On cancellation it returns the findings collected so far and ctx.Err().
	Evaluate(ctx context.Context, sourceURL string, doc *goquery.Document) ([]model.Finding, error)
}

// Set is an ordered list of evaluators.
type Set struct {
	evaluators []Evaluator
}

// Option configures the built-in rules created by NewSet.
type Option func(*Phrases)

// WithTriggerPhrases replaces the phrases that mark link or button text as vague.
// An empty list keeps the defaults.
func WithTriggerPhrases(phrases []string) Option {
	return func(p *Phrases) {
		if len(phrases) > 0 {
			p.Trigger = normalizeAll(phrases)
		}
	}
}

// WithExcludedPhrases replaces the phrases that suppress a trigger match.
// An empty list keeps the defaults.
func WithExcludedPhrases(phrases []string) Option {
	return func(p *Phrases) {
		if len(phrases) > 0 {
			p.Excluded = normalizeAll(phrases)
		}
	}
}

// WithIconClassPatterns replaces the class substrings that mark icon-only buttons.
// An empty list keeps the defaults.
func WithIconClassPatterns(patterns []string) Option {
	return func(p *Phrases) {
		if len(patterns) > 0 {
			p.IconClasses = patterns
		}
	}
}

// WithWholeWord restricts phrase matching to whole words, so "more" no longer
// matches "moreover".
func WithWholeWord(enabled bool) Option {
	return func(p *Phrases) {
		p.WholeWord = enabled
	}
}

// NewSet creates a Set with all six built-in rules registered.
func NewSet(opts ...Option) *Set {
	phrases := DefaultPhrases()
	for _, opt := range opts {
		opt(phrases)
	}

	s := &Set{}
	s.Register(NewImageRule())
	s.Register(NewLinkRule(phrases))
	s.Register(NewButtonRule(phrases))
	s.Register(NewHeadingRule())
	s.Register(NewTableRule())
	s.Register(NewDocumentLinkRule())
	return s
}

// NewSetOf creates a Set from the given evaluators, in order.
func NewSetOf(evaluators ...Evaluator) *Set {
	return &Set{evaluators: evaluators}
}

// Register appends an evaluator.
func (s *Set) Register(e Evaluator) {
	s.evaluators = append(s.evaluators, e)
}

// Evaluators returns the registered evaluators in order.
func (s *Set) Evaluators() []Evaluator {
	out := make([]Evaluator, len(s.evaluators))
	copy(out, s.evaluators)
	return out
}

// Len returns the number of registered evaluators.
func (s *Set) Len() int {
	return len(s.evaluators)
}

// eachUntilDone runs fn for every element of sel, stopping early if ctx is done.
// It returns ctx.Err() when stopped early.
func eachUntilDone(ctx context.Context, sel *goquery.Selection, fn func(*goquery.Selection)) error {
	err := ctx.Err()
	if err != nil {
		return err
	}
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		fn(s)
		return true
	})
	return err
}
