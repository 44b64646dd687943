// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// pathMatcher holds compiled include/exclude rules for file paths.
type pathMatcher struct {
	matcher *pathrules.Matcher
}

// newPathMatcher compiles glob path rules; it returns nil when no usable rule is given.
func newPathMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*pathMatcher, error) {
	rules = normalizeFilterRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	if opts.DefaultAction == pathrules.ActionUnknown {
		opts.DefaultAction = pathrules.ActionExclude
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidFilterRules, err)
	}

	return &pathMatcher{matcher: matcher}, nil
}

// normalizeFilterRules normalizes rule patterns and drops empty patterns.
func normalizeFilterRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePattern(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// normalizePattern trims spaces, converts "\" to "/", and drops leading "./" and "/".
func normalizePattern(pattern string) string {
	return strings.TrimLeft(normalizePathForMatching(pattern), "/")
}

// Match reports whether a file path is included by the rules.
func (m *pathMatcher) Match(path string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	return m.matcher.Included(path, false)
}

// FilterRules prunes files whose path is not included by glob rules and
// removes directories left empty. Without usable rules the tree is unchanged.
func (p *Package) FilterRules(rules []pathrules.Rule, opts pathrules.MatcherOptions) error {
	matcher, err := newPathMatcher(rules, opts)
	if err != nil {
		return err
	}
	if matcher == nil {
		return nil
	}

	pruneDir(&p.Dir, func(n Node, path string) bool {
		if _, isFile := n.(*File); !isFile {
			return false
		}

		return matcher.Match(path)
	}, "")
	return nil
}

// IncludeRules builds include rules from raw glob patterns.
func IncludeRules(patterns ...string) []pathrules.Rule {
	return buildRules(pathrules.ActionInclude, patterns)
}

// ExcludeRules builds exclude rules from raw glob patterns.
func ExcludeRules(patterns ...string) []pathrules.Rule {
	return buildRules(pathrules.ActionExclude, patterns)
}

// buildRules wraps non-empty patterns in rules with action.
func buildRules(action pathrules.Action, patterns []string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}

		rules = append(rules, pathrules.Rule{Action: action, Pattern: pattern})
	}

	return rules
}
