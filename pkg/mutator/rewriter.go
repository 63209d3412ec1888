package mutator

import (
	"strings"

	errs "ytrelink/pkg/errors"
)

// Rewriter replaces a fixed, ordered set of target substrings with one
// replacement string
type Rewriter struct {
	targets     []string
	replacement string
}

// NewRewriter validates the rule. A replacement containing a target would
// grow on every application, so it is rejected.
func NewRewriter(targets []string, replacement string) (*Rewriter, error) {
	if len(targets) == 0 {
		return nil, errs.New(errs.ErrorTypeConfig, 0, "at least one target is required")
	}
	for i, t := range targets {
		if t == "" {
			return nil, errs.New(errs.ErrorTypeConfig, 0, "target %d is empty", i)
		}
		if strings.Contains(replacement, t) {
			return nil, errs.New(errs.ErrorTypeConfig, 0, "replacement %q contains target %q", replacement, t)
		}
	}

	return &Rewriter{
		targets:     append([]string(nil), targets...),
		replacement: replacement,
	}, nil
}

// Targets returns a copy of the target list
func (r *Rewriter) Targets() []string {
	return append([]string(nil), r.targets...)
}

// Replacement returns the replacement string
func (r *Rewriter) Replacement() string {
	return r.replacement
}

// Matches reports whether text contains at least one target
func (r *Rewriter) Matches(text string) bool {
	for _, t := range r.targets {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// Rewrite replaces every occurrence of every target, in order
func (r *Rewriter) Rewrite(text string) string {
	for _, t := range r.targets {
		text = strings.ReplaceAll(text, t, r.replacement)
	}
	return text
}
