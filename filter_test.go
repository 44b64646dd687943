// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"errors"
	"slices"
	"testing"

	"github.com/woozymasta/pathrules"
)

func TestPathMatcherIncludeExcludeRules(t *testing.T) {
	t.Parallel()

	matcher, err := newPathMatcher([]pathrules.Rule{
		{Action: pathrules.ActionInclude, Pattern: "materials/**"},
		{Action: pathrules.ActionExclude, Pattern: "materials/debug/**"},
		{Action: pathrules.ActionInclude, Pattern: "materials/debug/keep/**"},
	}, pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionExclude,
	})
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}

	if !matcher.Match("materials/wood.vmt") {
		t.Fatal("materials/wood.vmt must be included by rules")
	}

	if matcher.Match("materials/debug/a.vmt") {
		t.Fatal("materials/debug/a.vmt must be excluded by rules")
	}

	if !matcher.Match("MATERIALS/DEBUG/keep/a.vmt") {
		t.Fatal("MATERIALS/DEBUG/keep/a.vmt must be re-included by rules")
	}
}

func TestPathMatcherInvalidRule(t *testing.T) {
	t.Parallel()

	_, err := newPathMatcher([]pathrules.Rule{
		{Action: pathrules.ActionUnknown, Pattern: "*.vtf"},
	}, pathrules.MatcherOptions{
		DefaultAction: pathrules.ActionExclude,
	})
	if !errors.Is(err, ErrInvalidFilterRules) {
		t.Fatalf("expected ErrInvalidFilterRules, got %v", err)
	}
}

func TestPathMatcherNoRules(t *testing.T) {
	t.Parallel()

	matcher, err := newPathMatcher(IncludeRules(" ", ""), pathrules.MatcherOptions{})
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	if matcher != nil {
		t.Fatal("expected nil matcher without usable rules")
	}
	if !matcher.Match("anything") {
		t.Fatal("nil matcher must include every path")
	}
}

func TestNormalizeFilterRules(t *testing.T) {
	t.Parallel()

	rules := normalizeFilterRules([]pathrules.Rule{
		{Action: pathrules.ActionInclude, Pattern: ` .\materials\*.vmt `},
		{Action: pathrules.ActionInclude, Pattern: "  "},
		{Action: pathrules.ActionExclude, Pattern: "/scripts/**"},
	})

	if len(rules) != 2 {
		t.Fatalf("len(rules)=%d, want 2", len(rules))
	}
	if rules[0].Pattern != "materials/*.vmt" || rules[1].Pattern != "scripts/**" {
		t.Fatalf("patterns=%q,%q", rules[0].Pattern, rules[1].Pattern)
	}
}

func TestFilterRules_PrunesTree(t *testing.T) {
	t.Parallel()

	pkg := newTestPackage(t, []manualEntry{
		{typ: "vmt", dir: "materials/models", base: "wood"},
		{typ: "vtf", dir: "materials/models", base: "wood"},
		{typ: "txt", dir: "scripts", base: "game"},
	})

	if err := pkg.FilterRules(IncludeRules("**/*.vmt"), pathrules.MatcherOptions{}); err != nil {
		t.Fatalf("FilterRules: %v", err)
	}

	if got := pkg.List(); !slices.Equal(got, []string{"materials/models/wood.vmt"}) {
		t.Fatalf("List=%q", got)
	}
	if _, ok := pkg.Get("scripts"); ok {
		t.Fatal("empty scripts directory must be removed")
	}
}

func TestFilterRules_ExcludeOnly(t *testing.T) {
	t.Parallel()

	pkg := newTestPackage(t, []manualEntry{
		{typ: "vmt", dir: "materials", base: "wood"},
		{typ: "txt", dir: "scripts", base: "game"},
	})

	err := pkg.FilterRules(ExcludeRules("scripts/**"), pathrules.MatcherOptions{
		DefaultAction: pathrules.ActionInclude,
	})
	if err != nil {
		t.Fatalf("FilterRules: %v", err)
	}

	if got := pkg.List(); !slices.Equal(got, []string{"materials/wood.vmt"}) {
		t.Fatalf("List=%q", got)
	}
}

func TestFilterRules_DirectoryGlobCaseInsensitive(t *testing.T) {
	t.Parallel()

	pkg := newTestPackage(t, treeEntries())

	err := pkg.FilterRules(IncludeRules("MATERIALS/**"), pathrules.MatcherOptions{CaseInsensitive: true})
	if err != nil {
		t.Fatalf("FilterRules: %v", err)
	}

	want := []string{"materials/models/brick.vmt", "materials/models/wood.vmt", "materials/skybox/sky.vtf"}
	if got := pkg.List(); !slices.Equal(got, want) {
		t.Fatalf("List=%q, want %q", got, want)
	}
}
